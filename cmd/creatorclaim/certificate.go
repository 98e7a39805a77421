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
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/certificate"
	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/blake2b"
)

func certificateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "certificate",
		Aliases: []string{"cert"},
		Short:   "Register and inspect certificates",
	}
	cmd.AddCommand(certificateRegisterCommand())
	cmd.AddCommand(certificateShowCommand())
	cmd.AddCommand(certificateListCommand())
	return cmd
}

// parseMetadataHash accepts a hex digest, or hashes a metadata URI with
// BLAKE2b-256
func parseMetadataHash(uri string, hexHash string) ([32]byte, error) {
	var ret [32]byte
	switch {
	case uri != "" && hexHash != "":
		return ret, errors.New("--metadata-uri and --metadata-hash are mutually exclusive")
	case hexHash != "":
		raw, err := hex.DecodeString(hexHash)
		if err != nil {
			return ret, fmt.Errorf("invalid metadata hash: %w", err)
		}
		if len(raw) != len(ret) {
			return ret, fmt.Errorf("metadata hash must be %d bytes, got %d", len(ret), len(raw))
		}
		copy(ret[:], raw)
		return ret, nil
	case uri != "":
		return blake2b.Sum256([]byte(uri)), nil
	default:
		return ret, errors.New("one of --metadata-uri or --metadata-hash is required")
	}
}

// parseSplits reads BENEFICIARY=BPS pairs
func parseSplits(
	values []string,
	resolve func(string) (address.Address, error),
) ([]certificate.RoyaltySplit, error) {
	ret := make([]certificate.RoyaltySplit, 0, len(values))
	for _, value := range values {
		who, bps, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid split %q: expected BENEFICIARY=BPS", value)
		}
		beneficiary, err := resolve(who)
		if err != nil {
			return nil, err
		}
		share, err := strconv.ParseUint(bps, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid share in split %q: %w", value, err)
		}
		ret = append(ret, certificate.RoyaltySplit{
			Beneficiary: beneficiary,
			ShareBps:    uint16(share),
		})
	}
	return ret, nil
}

func certificateRegisterCommand() *cobra.Command {
	var (
		creatorName  string
		assetName    string
		metadataURI  string
		metadataHash string
		price        uint64
		templateID   uint16
		splits       []string
		dryRun       bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the certificate of an asset",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			hash, err := parseMetadataHash(metadataURI, metadataHash)
			if err != nil {
				return err
			}
			royaltySplits, err := parseSplits(splits, a.resolve)
			if err != nil {
				return err
			}
			creator, err := a.signer(creatorName)
			if err != nil {
				return err
			}
			asset, err := a.signer(assetName)
			if err != nil {
				return err
			}
			tx, err := a.ledger.RegisterCertificateTx(
				creator.Address,
				asset.Address,
				certificate.RegisterArgs{
					MetadataURIHash:   hash,
					LicenceTemplateID: templateID,
					Price:             price,
					RoyaltySplits:     royaltySplits,
				},
			)
			if err != nil {
				return err
			}
			receipt, err := a.submit(cmd.Context(), tx, dryRun, creator, asset)
			if err != nil {
				return err
			}
			certAddr, _, err := certificate.DeriveAddress(asset.Address)
			if err != nil {
				return err
			}
			return printReceipt(cmd, receipt, dryRun, field{"certificate", certAddr.String()})
		}),
	}
	cmd.Flags().StringVar(&creatorName, "creator", "", "creator signing key")
	cmd.Flags().StringVar(&assetName, "asset", "", "asset signing key")
	cmd.Flags().StringVar(&metadataURI, "metadata-uri", "", "metadata URI, hashed into the certificate")
	cmd.Flags().StringVar(&metadataHash, "metadata-hash", "", "hex metadata URI hash")
	cmd.Flags().Uint64Var(&price, "price", 0, "licence price in token units")
	cmd.Flags().Uint16Var(&templateID, "template", 0, "licence template ID")
	cmd.Flags().StringArrayVar(&splits, "split", nil, "royalty split as BENEFICIARY=BPS, repeatable")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate without committing")
	_ = cmd.MarkFlagRequired("creator")
	_ = cmd.MarkFlagRequired("asset")
	return cmd
}

// certificateAddress returns the certificate named by args[0], or the one
// registered for asset
func certificateAddress(a *app, args []string, asset string) (address.Address, error) {
	switch {
	case len(args) > 0 && asset != "":
		return address.Zero, errors.New("pass either a certificate address or --asset")
	case len(args) > 0:
		return a.resolve(args[0])
	case asset != "":
		assetAddr, err := a.resolve(asset)
		if err != nil {
			return address.Zero, err
		}
		certAddr, _, err := certificate.DeriveAddress(assetAddr)
		return certAddr, err
	default:
		return address.Zero, errors.New("missing certificate address or --asset")
	}
}

func certificateShowCommand() *cobra.Command {
	var asset string
	cmd := &cobra.Command{
		Use:   "show [CERTIFICATE]",
		Short: "Show a certificate",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			addr, err := certificateAddress(a, args, asset)
			if err != nil {
				return err
			}
			details, err := a.ledger.Certificate(addr)
			if err != nil {
				return err
			}
			view := newCertificateView(addr, details)
			return printResult(cmd, view, view.fields())
		}),
	}
	cmd.Flags().StringVar(&asset, "asset", "", "look up the certificate of this asset")
	return cmd
}

func certificateListCommand() *cobra.Command {
	var (
		authority string
		limit     int
		offset    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered certificates",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			filter := models.CertificateFilter{Limit: limit, Offset: offset}
			if authority != "" {
				addr, err := a.resolve(authority)
				if err != nil {
					return err
				}
				filter.Authority = addr.Bytes()
			}
			records, err := a.ledger.ListCertificates(filter)
			if err != nil {
				return err
			}
			type row struct {
				Address      string `json:"address"`
				Asset        string `json:"asset"`
				Authority    string `json:"authority"`
				Price        uint64 `json:"price"`
				RegisteredAt int64  `json:"registeredAt"`
			}
			rows := make([]row, 0, len(records))
			fields := make([]field, 0, len(records))
			for _, record := range records {
				r := row{
					Address:      encodeAddress(record.Address),
					Asset:        encodeAddress(record.Asset),
					Authority:    encodeAddress(record.Authority),
					Price:        uint64(record.Price),
					RegisteredAt: record.RegisteredAt,
				}
				rows = append(rows, r)
				fields = append(fields, field{
					r.Address,
					fmt.Sprintf("authority %s price %d", r.Authority, r.Price),
				})
			}
			return printResult(cmd, rows, fields)
		}),
	}
	cmd.Flags().StringVar(&authority, "authority", "", "only certificates of this authority")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of results to skip")
	return cmd
}

// encodeAddress renders a replica address column
func encodeAddress(raw []byte) string {
	addr, err := address.New(raw)
	if err != nil {
		return hex.EncodeToString(raw)
	}
	return addr.String()
}
