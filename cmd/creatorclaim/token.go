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
	"fmt"
	"strconv"

	"github.com/Abraham12611/creator-claim/payment"
	"github.com/spf13/cobra"
)

func tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage payment token accounts",
	}
	cmd.AddCommand(tokenInitCommand())
	cmd.AddCommand(tokenMintCommand())
	cmd.AddCommand(tokenBalanceCommand())
	return cmd
}

func tokenInitCommand() *cobra.Command {
	var payerName string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "init OWNER",
		Short: "Create the token account of an owner",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			owner, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if payerName == "" {
				payerName = args[0]
			}
			payer, err := a.signer(payerName)
			if err != nil {
				return err
			}
			tx, err := a.ledger.InitializeTokenAccountTx(payer.Address, owner)
			if err != nil {
				return err
			}
			receipt, err := a.submit(cmd.Context(), tx, dryRun, payer)
			if err != nil {
				return err
			}
			tokenAddr, _, err := payment.DeriveTokenAccount(owner, a.ledger.PaymentConfig().Mint)
			if err != nil {
				return err
			}
			return printReceipt(cmd, receipt, dryRun, field{"tokenAccount", tokenAddr.String()})
		}),
	}
	cmd.Flags().StringVar(&payerName, "payer", "", "key paying for the account, defaults to OWNER")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate without committing")
	return cmd
}

func tokenMintCommand() *cobra.Command {
	var authorityName string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "mint OWNER AMOUNT",
		Short: "Issue tokens to an owner's token account",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			owner, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			if authorityName == "" {
				authorityName = a.cfg.MintAuthority
			}
			authority, err := a.signer(authorityName)
			if err != nil {
				return err
			}
			tx, err := a.ledger.MintTx(owner, amount)
			if err != nil {
				return err
			}
			receipt, err := a.submit(cmd.Context(), tx, dryRun, authority)
			if err != nil {
				return err
			}
			return printReceipt(cmd, receipt, dryRun, field{"amount", amount})
		}),
	}
	cmd.Flags().StringVar(&authorityName, "authority", "", "mint authority key, defaults to the configured mintAuthority")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate without committing")
	return cmd
}

type tokenAccountView struct {
	Owner   string `json:"owner"`
	Mint    string `json:"mint"`
	Balance uint64 `json:"balance"`
}

func tokenBalanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance OWNER",
		Short: "Show the token balance of an owner",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			owner, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			acct, err := a.ledger.TokenAccount(owner)
			if err != nil {
				return err
			}
			view := tokenAccountView{
				Owner:   acct.Owner.String(),
				Mint:    acct.Mint.String(),
				Balance: acct.Balance,
			}
			return printResult(cmd, view, []field{
				{"owner", view.Owner},
				{"mint", view.Mint},
				{"balance", view.Balance},
			})
		}),
	}
	return cmd
}
