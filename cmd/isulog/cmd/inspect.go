package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/isulog/pkg/isulog"
	"github.com/ssargent/isulog/pkg/records"
)

// headerCmd represents the header command
var headerCmd = &cobra.Command{
	Use:   "header <file>",
	Short: "Print the header of an uninstall log",
	Long: `Print the fixed header of an uninstall log without reading its records.

Example:
  isulog header unins000.dat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skipCRC, _ := cmd.Flags().GetBool("skip-crc")

		h, err := readHeader(args[0], skipCRC)
		if err != nil {
			return err
		}
		writeHeader(cmd.OutOrStdout(), h)
		return nil
	},
}

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "List the records of an uninstall log",
	Long: `Load an uninstall log and print its header and every record.

Examples:
  isulog dump unins000.dat
  isulog dump unins000.dat --output yaml
  isulog dump damaged.dat --skip-crc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skipCRC, _ := cmd.Flags().GetBool("skip-crc")
		output, _ := cmd.Flags().GetString("output")

		lg, err := loadLog(args[0], skipCRC, container.Logger(), container.Metrics())
		if err != nil {
			return err
		}
		return writeDump(cmd.OutOrStdout(), lg, output)
	},
}

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file>...",
	Short: "Check uninstall logs for damage",
	Long: `Load each uninstall log with all checksums verified. Exits non-zero
if any file fails.

Example:
  isulog verify unins000.dat unins001.dat`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			lg, err := loadLog(path, false, container.Logger(), container.Metrics())
			if err != nil {
				failed++
				cmd.Printf("FAIL %s: %v\n", path, err)
				continue
			}
			cmd.Printf("OK   %s (%d records)\n", path, len(lg.Records))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d logs failed verification", failed, len(args))
		}
		return nil
	},
}

// rewriteCmd represents the rewrite command
var rewriteCmd = &cobra.Command{
	Use:   "rewrite <in> <out>",
	Short: "Load a log and write it back out",
	Long: `Load an uninstall log and save it to a new file with fresh checksums.
With --skip-crc this repairs a log whose only damage is bad checksums.

Example:
  isulog rewrite --skip-crc damaged.dat repaired.dat`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		skipCRC, _ := cmd.Flags().GetBool("skip-crc")
		cfg := container.Config()

		lg, err := loadLog(args[0], skipCRC || cfg.Parser.SkipCRCCheck, container.Logger(), container.Metrics())
		if err != nil {
			return err
		}
		if err := saveLog(lg, args[1], cfg.Parser.ScratchSize, container.Logger(), container.Metrics()); err != nil {
			return err
		}

		cmd.Printf("Wrote %d records to %s\n", len(lg.Records), args[1])
		return nil
	},
}

func readHeader(path string, skipCRC bool) (isulog.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return isulog.Header{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	b := make([]byte, isulog.HeaderSize)
	n, err := io.ReadFull(f, b)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return isulog.Header{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	h, err := isulog.ParseHeader(b[:n], skipCRC)
	if err != nil {
		return isulog.Header{}, fmt.Errorf("invalid header in %s: %w", path, err)
	}
	return h, nil
}

func writeHeader(w io.Writer, h isulog.Header) {
	fmt.Fprintf(w, "Signature:       %s\n", h.Signature())
	fmt.Fprintf(w, "App ID:          %s\n", h.AppID)
	fmt.Fprintf(w, "App name:        %s\n", h.AppName)
	fmt.Fprintf(w, "Version:         %d\n", h.Version)
	fmt.Fprintf(w, "Records:         %d\n", h.RecordsCount)
	fmt.Fprintf(w, "File end offset: %d\n", h.FileEndOffset)
	fmt.Fprintf(w, "Uninstall flags: 0x%08x\n", uint32(h.UninstallFlags))
	fmt.Fprintf(w, "CRC32:           0x%08x\n", h.CRC32)
}

// dumpRecord is the YAML form of one record
type dumpRecord struct {
	Index       int    `yaml:"index"`
	Type        string `yaml:"type"`
	Flags       string `yaml:"flags"`
	Size        int    `yaml:"size"`
	Description string `yaml:"description"`
	Error       string `yaml:"error,omitempty"`
}

type dumpDocument struct {
	Summary isulog.Summary `yaml:"summary"`
	Records []dumpRecord   `yaml:"records"`
}

func recordError(rec records.Record) error {
	if raw, ok := rec.(*records.Raw); ok {
		return raw.Err()
	}
	return nil
}

func writeDump(w io.Writer, lg *isulog.Log, output string) error {
	switch output {
	case "yaml":
		doc := dumpDocument{Summary: lg.Summary(), Records: make([]dumpRecord, 0, len(lg.Records))}
		for i, rec := range lg.Records {
			r := dumpRecord{
				Index:       i,
				Type:        rec.Type().String(),
				Flags:       fmt.Sprintf("0x%08x", uint32(rec.Flags())),
				Size:        len(rec.Payload()),
				Description: rec.Description(),
			}
			if err := recordError(rec); err != nil {
				r.Error = err.Error()
			}
			doc.Records = append(doc.Records, r)
		}

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()

	case "text", "":
		writeHeader(w, lg.Header)
		fmt.Fprintln(w)
		for i, rec := range lg.Records {
			fmt.Fprintf(w, "%5d  %-22s 0x%08x  %s\n", i, rec.Type(), uint32(rec.Flags()), rec.Description())
			if err := recordError(rec); err != nil {
				fmt.Fprintf(w, "       undecoded: %v\n", err)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func init() {
	rootCmd.AddCommand(headerCmd, dumpCmd, verifyCmd, rewriteCmd)

	headerCmd.Flags().Bool("skip-crc", false, "Do not verify the header checksum")
	dumpCmd.Flags().Bool("skip-crc", false, "Do not verify header and block checksums")
	dumpCmd.Flags().StringP("output", "o", "text", "Output format (text, yaml)")
	rewriteCmd.Flags().Bool("skip-crc", false, "Do not verify checksums of the input")
}
