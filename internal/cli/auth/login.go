package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

type loginResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	} `json:"data"`
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to SuiteC",
	Long:  "Authenticate with your username and password to access SuiteC services",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		if username == "" {
			fmt.Print("Username: ")
			fmt.Scanln(&username)
		}

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		payload, _ := json.Marshal(map[string]string{
			"username": username,
			"password": string(password),
		})
		loginURL := fmt.Sprintf("http://%s:%d/api/v1/auth/login",
			viper.GetString("server.host"),
			viper.GetInt("server.http_port"))

		resp, err := http.Post(loginURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		defer resp.Body.Close()

		var result loginResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("unexpected response from server: %w", err)
		}
		if !result.Success {
			return fmt.Errorf("login failed: %s", result.Error)
		}

		configPath, err := saveCredentials(username, result)
		if err != nil {
			return err
		}

		fmt.Println("Login successful!")
		fmt.Printf("  Welcome back, %s!\n", username)
		fmt.Printf("  Token saved to: %s\n", configPath)
		return nil
	},
}

// saveCredentials persists the session under ~/.suitec/config.yaml
func saveCredentials(username string, result loginResponse) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	configDir := filepath.Join(home, ".suitec")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}

	viper.Set("user.username", username)
	viper.Set("user.id", result.Data.User.ID)
	viper.Set("user.token", result.Data.Token)

	configPath := filepath.Join(configDir, "config.yaml")
	if err := viper.WriteConfigAs(configPath); err != nil {
		return "", fmt.Errorf("cannot save credentials: %w", err)
	}
	return configPath, nil
}

func init() {
	loginCmd.Flags().String("username", "", "Username")
	AuthCmd.AddCommand(loginCmd)
}
