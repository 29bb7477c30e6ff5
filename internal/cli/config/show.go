package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display current SuiteC CLI configuration and connection settings",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("SuiteC Configuration:")
		fmt.Println()
		fmt.Println("Server:")
		fmt.Printf("  Host: %s\n", viper.GetString("server.host"))
		fmt.Printf("  HTTP Port: %d\n", viper.GetInt("server.http_port"))
		fmt.Println()

		username := viper.GetString("user.username")
		if username == "" {
			fmt.Println("User: not logged in")
			fmt.Println("  Run 'suitec auth login' to authenticate")
			return
		}

		fmt.Println("User:")
		fmt.Printf("  Username: %s\n", username)
		if token := viper.GetString("user.token"); token != "" {
			fmt.Printf("  Token: %s\n", truncateToken(token))
			fmt.Println("  Status: logged in")
		} else {
			fmt.Println("  Status: not logged in")
		}
	},
}

func truncateToken(token string) string {
	if len(token) > 20 {
		return token[:20] + "..."
	}
	return token
}

func init() {
	ConfigCmd.AddCommand(showCmd)
}
