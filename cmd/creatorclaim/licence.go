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
	"errors"
	"fmt"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/licence"
	"github.com/spf13/cobra"
)

func licenceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "licence",
		Aliases: []string{"license"},
		Short:   "Purchase, revoke and verify licences",
	}
	cmd.AddCommand(licencePurchaseCommand())
	cmd.AddCommand(licenceRevokeCommand())
	cmd.AddCommand(licenceShowCommand())
	cmd.AddCommand(licenceListCommand())
	cmd.AddCommand(licenceVerifyCommand())
	return cmd
}

// parseExpiry returns nil for a perpetual licence
func parseExpiry(now time.Time, expiresIn time.Duration, expiresAt string) (*int64, error) {
	switch {
	case expiresIn != 0 && expiresAt != "":
		return nil, errors.New("--expires-in and --expires-at are mutually exclusive")
	case expiresIn != 0:
		return licence.Expiry(now.Add(expiresIn)), nil
	case expiresAt != "":
		t, err := time.Parse(time.RFC3339, expiresAt)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry: %w", err)
		}
		return licence.Expiry(t), nil
	default:
		return nil, nil
	}
}

func licencePurchaseCommand() *cobra.Command {
	var (
		buyerName string
		certArg   string
		asset     string
		price     uint64
		expiresIn time.Duration
		expiresAt string
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Purchase a licence for a certificate",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			var certArgs []string
			if certArg != "" {
				certArgs = []string{certArg}
			}
			cert, err := certificateAddress(a, certArgs, asset)
			if err != nil {
				return err
			}
			buyer, err := a.signer(buyerName)
			if err != nil {
				return err
			}
			if price == 0 {
				// Pay the listed price unless told otherwise
				details, err := a.ledger.Certificate(cert)
				if err != nil {
					return err
				}
				price = details.Price
			}
			expiry, err := parseExpiry(time.Now(), expiresIn, expiresAt)
			if err != nil {
				return err
			}
			tx, err := a.ledger.PurchaseLicenceTx(buyer.Address, cert, licence.PurchaseArgs{
				PurchasePrice:   price,
				ExpiryTimestamp: expiry,
			})
			if err != nil {
				return err
			}
			receipt, err := a.submit(cmd.Context(), tx, dryRun, buyer)
			if err != nil {
				return err
			}
			licenceAddr, err := a.ledger.LicenceAddress(cert, buyer.Address)
			if err != nil {
				return err
			}
			return printReceipt(cmd, receipt, dryRun, field{"licence", licenceAddr.String()})
		}),
	}
	cmd.Flags().StringVar(&buyerName, "buyer", "", "buyer signing key")
	cmd.Flags().StringVar(&certArg, "certificate", "", "certificate address")
	cmd.Flags().StringVar(&asset, "asset", "", "purchase the certificate of this asset")
	cmd.Flags().Uint64Var(&price, "price", 0, "price to pay, defaults to the listed price")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "licence lifetime, perpetual when unset")
	cmd.Flags().StringVar(&expiresAt, "expires-at", "", "licence expiry as RFC3339")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate without committing")
	_ = cmd.MarkFlagRequired("buyer")
	return cmd
}

func licenceRevokeCommand() *cobra.Command {
	var (
		revokerName string
		dryRun      bool
	)
	cmd := &cobra.Command{
		Use:   "revoke LICENCE",
		Short: "Revoke a licence as its certificate authority or the admin",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			licenceAddr, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			revoker, err := a.signer(revokerName)
			if err != nil {
				return err
			}
			tx, err := a.ledger.RevokeLicenceTx(revoker.Address, licenceAddr)
			if err != nil {
				return err
			}
			receipt, err := a.submit(cmd.Context(), tx, dryRun, revoker)
			if err != nil {
				return err
			}
			return printReceipt(cmd, receipt, dryRun, field{"licence", licenceAddr.String()})
		}),
	}
	cmd.Flags().StringVar(&revokerName, "revoker", "", "revoking signing key")
	_ = cmd.MarkFlagRequired("revoker")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate without committing")
	return cmd
}

// licenceAddress returns the licence named by args[0], or derives it from
// --certificate and --buyer
func licenceAddress(a *app, args []string, cert string, buyer string) (address.Address, error) {
	if len(args) > 0 {
		if cert != "" || buyer != "" {
			return address.Zero, errors.New("pass either a licence address or --certificate and --buyer")
		}
		return a.resolve(args[0])
	}
	certAddr, err := a.resolve(cert)
	if err != nil {
		return address.Zero, fmt.Errorf("certificate: %w", err)
	}
	buyerAddr, err := a.resolve(buyer)
	if err != nil {
		return address.Zero, fmt.Errorf("buyer: %w", err)
	}
	return a.ledger.LicenceAddress(certAddr, buyerAddr)
}

func licenceShowCommand() *cobra.Command {
	var cert, buyer string
	cmd := &cobra.Command{
		Use:   "show [LICENCE]",
		Short: "Show a licence",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			addr, err := licenceAddress(a, args, cert, buyer)
			if err != nil {
				return err
			}
			lic, err := a.ledger.Licence(addr)
			if err != nil {
				return err
			}
			view := newLicenceView(addr, lic, time.Now())
			return printResult(cmd, view, view.fields())
		}),
	}
	cmd.Flags().StringVar(&cert, "certificate", "", "certificate of the licence")
	cmd.Flags().StringVar(&buyer, "buyer", "", "buyer of the licence")
	return cmd
}

// licenceFilter maps an effective status onto the replica columns
func licenceFilter(status string, now time.Time) (models.LicenceFilter, error) {
	var ret models.LicenceFilter
	switch status {
	case "":
	case licence.StatusActive.String():
		ret.Status = models.LicenceStatusActive
		ret.UnexpiredAsOf = now.Unix()
	case licence.StatusExpired.String():
		ret.Status = models.LicenceStatusActive
		ret.ExpiredAsOf = now.Unix()
	case licence.StatusRevoked.String():
		ret.Status = models.LicenceStatusRevoked
	default:
		return ret, fmt.Errorf("unknown licence status %q", status)
	}
	return ret, nil
}

func licenceListCommand() *cobra.Command {
	var (
		cert   string
		buyer  string
		status string
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List licences",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			filter, err := licenceFilter(status, time.Now())
			if err != nil {
				return err
			}
			filter.Limit = limit
			filter.Offset = offset
			if cert != "" {
				addr, err := a.resolve(cert)
				if err != nil {
					return err
				}
				filter.Certificate = addr.Bytes()
			}
			if buyer != "" {
				addr, err := a.resolve(buyer)
				if err != nil {
					return err
				}
				filter.Buyer = addr.Bytes()
			}
			summaries, err := a.ledger.ListLicences(filter)
			if err != nil {
				return err
			}
			type row struct {
				Address     string `json:"address"`
				Certificate string `json:"certificate"`
				Buyer       string `json:"buyer"`
				Price       uint64 `json:"price"`
				ExpiresAt   *int64 `json:"expiresAt,omitempty"`
				Status      string `json:"status"`
			}
			rows := make([]row, 0, len(summaries))
			fields := make([]field, 0, len(summaries))
			for _, summary := range summaries {
				r := row{
					Address:     encodeAddress(summary.Address),
					Certificate: encodeAddress(summary.Certificate),
					Buyer:       encodeAddress(summary.Buyer),
					Price:       uint64(summary.Price),
					ExpiresAt:   summary.ExpiresAt,
					Status:      summary.EffectiveStatus.String(),
				}
				rows = append(rows, r)
				fields = append(fields, field{
					r.Address,
					fmt.Sprintf("%s buyer %s certificate %s", r.Status, r.Buyer, r.Certificate),
				})
			}
			return printResult(cmd, rows, fields)
		}),
	}
	cmd.Flags().StringVar(&cert, "certificate", "", "only licences of this certificate")
	cmd.Flags().StringVar(&buyer, "buyer", "", "only licences held by this buyer")
	cmd.Flags().StringVar(&status, "status", "", "active, expired or revoked")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of results to skip")
	return cmd
}

func licenceVerifyCommand() *cobra.Command {
	var holder string
	cmd := &cobra.Command{
		Use:   "verify LICENCE",
		Short: "Check that a licence is valid for a holder",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			addr, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			holderAddr, err := a.resolve(holder)
			if err != nil {
				return fmt.Errorf("holder: %w", err)
			}
			if err := a.ledger.VerifyLicence(addr, holderAddr); err != nil {
				return err
			}
			return printResult(
				cmd,
				map[string]any{"licence": addr.String(), "holder": holderAddr.String(), "valid": true},
				[]field{{"licence", addr.String()}, {"holder", holderAddr.String()}, {"valid", true}},
			)
		}),
	}
	cmd.Flags().StringVar(&holder, "holder", "", "expected licence holder")
	_ = cmd.MarkFlagRequired("holder")
	return cmd
}
