package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DanWilson00/mavwire/codec"
	"github.com/DanWilson00/mavwire/link"
)

var (
	replayDialect string
	replayTUI     bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <capture.bin>",
	Short: "Replay a recorded byte stream through the decoder",
	Long: `Replay feeds a recorded byte stream through the frame parser and
prints each decoded message. Corrupt or unknown frames are dropped and
counted, the stream itself never stops.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd.Context(), replayDialect)
		if err != nil {
			return err
		}

		opts := []link.Option{
			link.WithSourceIDs(cfg.Stream.SystemID, cfg.Stream.ComponentID),
		}
		if cfg.Stream.EnumNames {
			opts = append(opts, link.WithEnumNames())
		}
		l := link.New(reg, opts...)

		srcOpts := []link.SourceOption{link.WithChunkSize(cfg.Stream.ChunkSize)}
		if cfg.Stream.Interval > 0 {
			srcOpts = append(srcOpts, link.WithInterval(cfg.Stream.Interval))
		}
		src := link.NewFileSource(args[0], srcOpts...)

		if replayTUI {
			return runMonitor(cmd.Context(), l, src)
		}

		if err := l.SubscribeMessages(func(m *codec.Message) {
			fmt.Println(formatMessage(m))
		}); err != nil {
			return err
		}
		if err := l.Run(cmd.Context(), src); err != nil {
			return err
		}

		s := l.Stats()
		fmt.Printf("\n%d frames, %d crc errors, %d unknown\n",
			s.FramesReceived, s.CrcErrors, s.UnknownMessages)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVarP(&replayDialect, "dialect", "d", "", "definition document (XML or JSON)")
	replayCmd.Flags().BoolVar(&replayTUI, "tui", false, "live monitor instead of line output")
}

func formatMessage(m *codec.Message) string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, m.Fields[name]))
	}
	return fmt.Sprintf("%s seq=%d sys=%d comp=%d  %s",
		m.Name, m.Seq, m.SysID, m.CompID, strings.Join(parts, " "))
}
