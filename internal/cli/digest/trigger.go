package digest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func triggerCmd(frequency string) *cobra.Command {
	return &cobra.Command{
		Use:   frequency + " <course-id>",
		Short: fmt.Sprintf("Trigger the %s digest for a course", frequency),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := viper.GetString("user.token")
			if token == "" {
				return fmt.Errorf("not logged in, run 'suitec auth login' first")
			}

			url := fmt.Sprintf("http://%s:%d/api/v1/courses/%s/digests/%s",
				viper.GetString("server.host"),
				viper.GetInt("server.http_port"),
				args[0],
				frequency)

			req, err := http.NewRequest(http.MethodPost, url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("trigger failed: %w", err)
			}
			defer resp.Body.Close()

			respBody, _ := io.ReadAll(resp.Body)
			var result map[string]interface{}
			json.Unmarshal(respBody, &result)

			if result["success"] == true {
				fmt.Printf("%s digest triggered for course %s\n", frequency, args[0])
				return nil
			}
			return fmt.Errorf("trigger failed: %v", result["error"])
		},
	}
}

func init() {
	DigestCmd.AddCommand(triggerCmd("daily"))
	DigestCmd.AddCommand(triggerCmd("weekly"))
}
