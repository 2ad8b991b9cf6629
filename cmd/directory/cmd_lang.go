package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/spf13/cobra"
)

var langCmd = &cobra.Command{
	Use:       "lang [tr|en]",
	Short:     "Show or switch the saved UI language",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(i18n.Turkish), string(i18n.English)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app, out io.Writer) error {
			if len(args) == 0 {
				fmt.Fprintln(out, a.languages.Lang())
				return nil
			}
			lang, err := i18n.Parse(args[0])
			if err != nil {
				return err
			}
			if err := a.languages.SetLang(ctx, lang); err != nil {
				return err
			}
			fmt.Fprintln(out, lang)
			return nil
		})
	},
}
