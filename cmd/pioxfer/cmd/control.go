package cmd

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pioxfer/device"
)

func newVersionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the interface version reported by the driver.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			s, err := openSession(opts.cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, s.Close()) }()

			buf := make([]byte, 4)
			if _, err := s.do(cmd.Context(), device.CodeGetVersion, buf); err != nil {
				return err
			}

			v := binary.LittleEndian.Uint32(buf)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: interface version %s (0x%08X)\n",
				opts.cfg.Device.Name, device.VersionString(v), v)

			return nil
		},
	}
}

func newResetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the add-on FIFOs and interrupt state of the board.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			s, err := openSession(opts.cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, s.Close()) }()

			if _, err := s.do(cmd.Context(), device.CodeReset, nil); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: board reset\n",
				opts.cfg.Device.Name)

			return nil
		},
	}
}
