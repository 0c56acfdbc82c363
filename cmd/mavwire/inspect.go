package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/DanWilson00/mavwire/dialect"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	extStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <definition> [message]",
	Short: "Show compiled message layouts",
	Long: `Inspect prints the wire layout of compiled messages: field order
after reordering, byte offsets, lengths and the integrity byte. With no
message name it lists every message in the dialect.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if len(args) == 2 {
			name := strings.ToUpper(args[1])
			m, ok := reg.MessageNamed(name)
			if !ok {
				return fmt.Errorf("message %q not defined", name)
			}
			printMessage(m)
			return nil
		}

		for _, m := range reg.Messages() {
			fmt.Printf("%6d  %-40s  crc_extra %3d  len %d/%d\n",
				m.ID, m.Name, m.CRCExtra, m.EncodedLength, m.WireLength())
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d messages", reg.Len())))
		return nil
	},
}

func printMessage(m *dialect.Message) {
	fmt.Printf("%s (id %d)\n", headerStyle.Render(m.Name), m.ID)
	if m.Description != "" {
		fmt.Println(dimStyle.Render("  " + m.Description))
	}
	fmt.Printf("  crc_extra      %d\n", m.CRCExtra)
	fmt.Printf("  encoded length %d\n", m.EncodedLength)
	fmt.Printf("  wire length    %d\n", m.WireLength())
	fmt.Println()
	fmt.Println(headerStyle.Render("  offset  bytes  type              name"))
	for _, f := range m.Fields {
		line := fmt.Sprintf("  %6d  %5d  %-16s  %s", f.Offset, f.ByteLength(), f.Type, f.Name)
		if f.Enum != "" {
			line += dimStyle.Render("  " + f.Enum)
		}
		if f.Extension {
			line += extStyle.Render("  extension")
		}
		fmt.Println(line)
	}
}
