package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photocrop",
	Short: "A multi-photo crop and reorder tool",
	Long: `Photocrop prepares the photos of a post for publishing: each photo is
fitted to cover a fixed-aspect crop window, adjusted by scale and
translation, reordered, and exported cropped to exactly what the window
shows. Run batch jobs from the command line or drive the editor over HTTP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
