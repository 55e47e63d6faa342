package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"auricle/internal/api"
	"auricle/internal/services/speech"
)

func newVoicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "voices",
		Short:       "List the available synthesis voices",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			voices := api.FromVoices(speech.Voices())
			rows := make([][]string, 0, len(voices))
			for _, voice := range voices {
				rows = append(rows, []string{
					voice.Token,
					voice.Language,
					voice.Gender,
					yesNo(voice.Default),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Token", "Language", "Gender", "Default"},
				rows,
				nil,
			))
			return nil
		},
	}
}
