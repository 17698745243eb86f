package main

import (
	"ddi/internal/app"
	"ddi/internal/infra/routing"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List compiled routes in dispatch order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Setup(envFiles...)
		if err != nil {
			return err
		}
		defer a.Close()
		printRoutes(cmd.OutOrStdout(), a.Routes)
		return nil
	},
}

var methodColors = map[string]*color.Color{
	http.MethodGet:    color.New(color.FgGreen),
	http.MethodPost:   color.New(color.FgYellow),
	http.MethodPut:    color.New(color.FgBlue),
	http.MethodPatch:  color.New(color.FgCyan),
	http.MethodDelete: color.New(color.FgRed),
}

func printRoutes(w io.Writer, routes []*routing.CompiledRoute) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATTERN\tHANDLER\tMIDDLEWARE")
	for _, r := range routes {
		methods := make([]string, 0, len(r.Methods))
		for _, m := range r.Methods {
			if c, ok := methodColors[m]; ok {
				m = c.Sprint(m)
			}
			methods = append(methods, m)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			strings.Join(methods, ","), r.Pattern, r.Handler, strings.Join(r.Middleware, " > "))
	}
	tw.Flush()
}
