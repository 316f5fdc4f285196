// Command creditctl drives the billing workflows from a terminal using the
// same configuration as the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd(loadApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(newApp func() (*app, error)) *cobra.Command {
	opts := &globalOptions{newApp: newApp}

	rootCmd := &cobra.Command{
		Use:           "creditctl",
		Short:         "creditctl - operate the credit storefront and post-paid billing",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.email, "email", "e", "", "Customer email")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", formatJSON, "Output format (json, yaml)")

	rootCmd.AddCommand(customerCmd(opts))
	rootCmd.AddCommand(chargeCmd(opts))
	rootCmd.AddCommand(historyCmd(opts))
	rootCmd.AddCommand(cardsCmd(opts))
	rootCmd.AddCommand(checkoutCmd(opts))
	rootCmd.AddCommand(setupCmd(opts))

	return rootCmd
}
