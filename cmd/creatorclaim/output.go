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
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/certificate"
	"github.com/Abraham12611/creator-claim/licence"
	"github.com/Abraham12611/creator-claim/runtime"
	"github.com/spf13/cobra"
)

type field struct {
	name  string
	value any
}

// printResult writes view as JSON when --json is set, otherwise the fields
// as aligned text
func printResult(cmd *cobra.Command, view any, fields []field) error {
	w := cmd.OutOrStdout()
	if globalFlags.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return printFields(w, fields)
}

func printFields(w io.Writer, fields []field) error {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.name))
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%-*s  %v\n", width+1, f.name+":", f.value); err != nil {
			return err
		}
	}
	return nil
}

type receiptView struct {
	Tx        string    `json:"tx"`
	Payer     string    `json:"payer"`
	Timestamp time.Time `json:"timestamp"`
	Events    []string  `json:"events"`
	Simulated bool      `json:"simulated,omitempty"`
}

func newReceiptView(receipt *runtime.Receipt, simulated bool) receiptView {
	ret := receiptView{
		Tx:        receipt.ID.String(),
		Payer:     receipt.Payer.String(),
		Timestamp: receipt.Timestamp.UTC(),
		Events:    make([]string, 0, len(receipt.Events)),
		Simulated: simulated,
	}
	for _, evt := range receipt.Events {
		ret.Events = append(ret.Events, string(evt.Type))
	}
	return ret
}

func printReceipt(
	cmd *cobra.Command,
	receipt *runtime.Receipt,
	simulated bool,
	extra ...field,
) error {
	view := newReceiptView(receipt, simulated)
	fields := append([]field{
		{"tx", view.Tx},
		{"payer", view.Payer},
		{"timestamp", view.Timestamp.Format(time.RFC3339)},
		{"events", view.Events},
	}, extra...)
	if simulated {
		fields = append(fields, field{"simulated", true})
	}
	if !globalFlags.jsonOutput {
		return printFields(cmd.OutOrStdout(), fields)
	}
	out := map[string]any{"receipt": view}
	for _, f := range extra {
		out[f.name] = f.value
	}
	return printResult(cmd, out, nil)
}

type splitView struct {
	Beneficiary string `json:"beneficiary"`
	ShareBps    uint16 `json:"shareBps"`
}

type certificateView struct {
	Address           string      `json:"address"`
	Authority         string      `json:"authority"`
	MetadataURIHash   string      `json:"metadataUriHash"`
	LicenceTemplateID uint16      `json:"licenceTemplateId"`
	Price             uint64      `json:"price"`
	RoyaltySplits     []splitView `json:"royaltySplits"`
}

func newCertificateView(
	addr address.Address,
	details *certificate.CertificateDetails,
) certificateView {
	ret := certificateView{
		Address:           addr.String(),
		Authority:         details.Authority.String(),
		MetadataURIHash:   hex.EncodeToString(details.MetadataURIHash[:]),
		LicenceTemplateID: details.LicenceTemplateID,
		Price:             details.Price,
		RoyaltySplits:     make([]splitView, 0, len(details.RoyaltySplits)),
	}
	for _, split := range details.RoyaltySplits {
		ret.RoyaltySplits = append(ret.RoyaltySplits, splitView{
			Beneficiary: split.Beneficiary.String(),
			ShareBps:    split.ShareBps,
		})
	}
	return ret
}

func (v certificateView) fields() []field {
	ret := []field{
		{"certificate", v.Address},
		{"authority", v.Authority},
		{"metadata hash", v.MetadataURIHash},
		{"licence template", v.LicenceTemplateID},
		{"price", v.Price},
	}
	for i, split := range v.RoyaltySplits {
		ret = append(ret, field{
			fmt.Sprintf("split %d", i),
			fmt.Sprintf("%s %d bps", split.Beneficiary, split.ShareBps),
		})
	}
	return ret
}

type licenceView struct {
	Address           string     `json:"address"`
	Certificate       string     `json:"certificate"`
	Buyer             string     `json:"buyer"`
	PurchasePrice     uint64     `json:"purchasePrice"`
	PurchaseTimestamp time.Time  `json:"purchaseTimestamp"`
	ExpiryTimestamp   *time.Time `json:"expiryTimestamp,omitempty"`
	Status            string     `json:"status"`
	EffectiveStatus   string     `json:"effectiveStatus"`
}

func newLicenceView(
	addr address.Address,
	lic *licence.Licence,
	now time.Time,
) licenceView {
	ret := licenceView{
		Address:           addr.String(),
		Certificate:       lic.CertificateDetails.String(),
		Buyer:             lic.Buyer.String(),
		PurchasePrice:     lic.PurchasePrice,
		PurchaseTimestamp: time.Unix(lic.PurchaseTimestamp, 0).UTC(),
		Status:            lic.Status.String(),
		EffectiveStatus:   lic.EffectiveStatus(now).String(),
	}
	if lic.ExpiryTimestamp != nil {
		expiry := time.Unix(*lic.ExpiryTimestamp, 0).UTC()
		ret.ExpiryTimestamp = &expiry
	}
	return ret
}

func (v licenceView) fields() []field {
	expiry := "never"
	if v.ExpiryTimestamp != nil {
		expiry = v.ExpiryTimestamp.Format(time.RFC3339)
	}
	return []field{
		{"licence", v.Address},
		{"certificate", v.Certificate},
		{"buyer", v.Buyer},
		{"price", v.PurchasePrice},
		{"purchased", v.PurchaseTimestamp.Format(time.RFC3339)},
		{"expires", expiry},
		{"status", v.Status},
		{"effective status", v.EffectiveStatus},
	}
}
