package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devraj-singh/gobit/internal/bencode"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <bencoded>",
		Short: "Decode a bencoded value and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := bencode.Decode([]byte(args[0]))
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(toJSON(v), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

// toJSON converts a bencode.Value into a generic any tree suitable for
// JSON pretty-printing. This is display-only: the info_hash computation
// never goes through it.
func toJSON(v bencode.Value) any {
	switch v.Kind {
	case bencode.String:
		return string(v.Str)
	case bencode.Int:
		return v.Num
	case bencode.List:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = toJSON(item)
		}
		return out
	case bencode.Dict:
		out := make(map[string]any, len(v.Dict))
		for _, entry := range v.Dict {
			out[string(entry.Key)] = toJSON(entry.Val)
		}
		return out
	default:
		return nil
	}
}
