// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"math/bits"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/olekukonko/tablewriter"
	"github.com/xmidt-org/jwkit"
)

// InspectCmd describes each key in a document, one line per key.
type InspectCmd struct {
	Input string `arg:"" optional:"" default:"-" help:"the document to inspect, or - for stdin"`
}

// keySize describes the strength of a key: the modulus size or the curve.
func keySize(k jwkit.Key) string {
	var n []byte
	switch m := k.Material.(type) {
	case jwkit.RSAPublic:
		n = m.N

	case jwkit.RSAPrivate:
		n = m.N

	default:
		return string(k.Curve())
	}

	return fmt.Sprintf("%d bits", (len(n)-1)*8+bits.Len8(n[0]))
}

func orNone(v string) string {
	if len(v) == 0 {
		return "-"
	}

	return v
}

// newSummaryTable creates a borderless, tab-padded table.
func newSummaryTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"INDEX", "KID", "KTY", "SIZE", "PRIVATE", "USE", "ALG", "THUMBPRINT"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}

func writeSummary(w io.Writer, keys []jwkit.Key) error {
	table := newSummaryTable(w)
	for i, k := range keys {
		tp, err := jwkit.ThumbprintKID(k)
		if err != nil {
			return fmt.Errorf("key at index %d: %w", i, err)
		}

		table.Append([]string{
			strconv.Itoa(i),
			orNone(k.KID),
			k.Type().String(),
			keySize(k),
			strconv.FormatBool(k.IsPrivate()),
			orNone(string(k.Use)),
			orNone(k.Alg),
			tp,
		})
	}

	table.Render()
	return nil
}

func (ic *InspectCmd) Run(kctx *kong.Context, env *Environment) error {
	data, err := readInput(env, ic.Input)
	if err == nil {
		var keys []jwkit.Key
		keys, err = parseDocument(data)
		if err == nil {
			err = writeSummary(kctx.Stdout, keys)
		}
	}

	return err
}
