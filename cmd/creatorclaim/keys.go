// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/Abraham12611/creator-claim/internal/config"
	"github.com/spf13/cobra"
)

type keyView struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func keygenCommand() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "keygen NAME",
		Short: "Generate a new signing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errNoConfig
			}
			key, err := newKeyStore(cfg).Generate(args[0], description)
			if err != nil {
				return err
			}
			view := keyView{Name: key.Name, Address: key.Address.String()}
			return printResult(cmd, view, []field{
				{"name", view.Name},
				{"address", view.Address},
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "description stored in the key file")
	return cmd
}

func addressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address [NAME...]",
		Short: "Show the address of keys in the key store, or all keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errNoConfig
			}
			ks := newKeyStore(cfg)
			names := args
			if len(names) == 0 {
				var err error
				names, err = ks.List()
				if err != nil {
					return err
				}
			}
			views := make([]keyView, 0, len(names))
			fields := make([]field, 0, len(names))
			for _, name := range names {
				addr, err := ks.Address(name)
				if err != nil {
					return err
				}
				views = append(views, keyView{Name: name, Address: addr.String()})
				fields = append(fields, field{name, addr.String()})
			}
			return printResult(cmd, views, fields)
		},
	}
	return cmd
}
