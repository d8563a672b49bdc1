package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/kvcell/codec"
)

func newEncodeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "encode [VALUE|-]",
		Short: "Print the envelope a value is stored as",
		Long: `Classifies VALUE (or stdin) and prints its envelope.

Without --as, valid JSON is classified by shape and other text is a string:
  kvcell encode 42          {"data":"42","type":"number"}
  kvcell encode hello       {"data":"hello","type":"string"}
  kvcell encode --as date 2024-01-02`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd.InOrStdin(), cmd.OutOrStdout(), v, args)
		},
	}

	cmd.Flags().String("as", "auto", "kind to read VALUE as: auto|number|string|boolean|object|null|map|set|date|any")
	addEnvelopeFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)
	return cmd
}

func runEncode(in io.Reader, out io.Writer, v *viper.Viper, args []string) error {
	f, err := codec.FormatByName(v.GetString("format"))
	if err != nil {
		return err
	}
	s, err := readArg(in, args)
	if err != nil {
		return err
	}
	val, err := parseLiteral(s, v.GetString("as"))
	if err != nil {
		return err
	}
	b, err := codec.Tagged{Format: f}.Encode(val)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, toText(f, b))
	return err
}

func newDecodeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "decode [ENVELOPE|-]",
		Short: "Decode an envelope and print its kind and payload",
		Long: `Reads an envelope from the argument or stdin and prints
"<kind><TAB><canonical payload>". Binary formats are read as base64.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.InOrStdin(), cmd.OutOrStdout(), v, args)
		},
	}

	addEnvelopeFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)
	return cmd
}

func runDecode(in io.Reader, out io.Writer, v *viper.Viper, args []string) error {
	f, err := codec.FormatByName(v.GetString("format"))
	if err != nil {
		return err
	}
	s, err := readArg(in, args)
	if err != nil {
		return err
	}
	b, err := fromText(f, s)
	if err != nil {
		return err
	}
	val, err := codec.Tagged{Format: f, Strict: v.GetBool("strict")}.Decode(b)
	if err != nil {
		return err
	}
	line, err := describe(val)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, line)
	return err
}

func newClassifyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "classify [VALUE|-]",
		Short:   "Print the kind a value would be stored under",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			val, err := parseLiteral(s, "auto")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), val.Kind())
			return err
		},
	}

	addLoggingFlags(cmd)
	addConfigFlag(cmd)
	return cmd
}
