package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pentacore/bridge/internal/wire/pentair16"
	"github.com/pentacore/bridge/internal/wire/pentair2"
	"github.com/spf13/cobra"
)

var decodeVariant string

func init() {
	decodeCmd.Flags().StringVar(&decodeVariant, "variant", "pentair16", "wire variant to decode: pentair16 or pentair2")
	rootCmd.AddCommand(decodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode a captured byte stream into human-readable frames",
	Long: `decode reads a captured RS-485 byte stream from a file (or stdin if no
file is given) and prints each decoded frame, one per line, the same
format a live "bridge serve" session logs at trace level.

A framing or checksum error is printed and decoding resumes at the next
byte, matching the resumable decoder's own resync behavior.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	buf := make([]byte, 4096)
	switch decodeVariant {
	case "pentair2":
		dec := pentair2.NewDecoder()
		for {
			n, err := r.Read(buf)
			for i := 0; i < n; i++ {
				pkt, derr := dec.DecodeByte(buf[i])
				if derr != nil {
					fmt.Printf("[ERROR] %v\n", derr)
					continue
				}
				if pkt != nil {
					fmt.Print(pentair2.Format(pkt))
				}
			}
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}
	default:
		dec := pentair16.NewDecoder()
		for {
			n, err := r.Read(buf)
			for i := 0; i < n; i++ {
				pkt, derr := dec.DecodeByte(buf[i])
				if derr != nil {
					fmt.Printf("[ERROR] %v\n", derr)
					continue
				}
				if pkt != nil {
					fmt.Print(pentair16.Format(pkt))
				}
			}
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}
	}
}
