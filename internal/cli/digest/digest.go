package digest

import "github.com/spf13/cobra"

var DigestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Digest commands",
	Long:  "Trigger daily and weekly digest runs for a course (admin only)",
}
