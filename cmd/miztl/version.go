package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/miztl"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", miztl.Name, miztl.FullVersion())
			if miztl.BuildDate != "unknown" && miztl.BuildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", miztl.BuildDate)
			}
			fmt.Fprintf(a.stdout, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
