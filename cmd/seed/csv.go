package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
)

// Codificaciones aceptadas para los CSV exportados de las hojas de cálculo de la molienda.
const (
	encodingUTF8   = "utf-8"
	encodingCP1251 = "windows-1251"
)

// decodeReader envuelve r para entregar UTF-8. Quita el BOM si viene en UTF-8.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", encodingUTF8, "utf8":
		br := bufio.NewReader(r)
		if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
			_, _ = br.Discard(3)
		}
		return br, nil
	case encodingCP1251, "cp1251":
		return transform.NewReader(r, charmap.Windows1251.NewDecoder()), nil
	}
	return nil, fmt.Errorf("codificación no soportada: %s (utf-8 | windows-1251)", encoding)
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// isHeader la primera fila se salta si su primera columna es "name".
func isHeader(line int, record []string) bool {
	return line == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "name")
}

// readProducts columnas: name, bag_kg[, active].
func readProducts(r io.Reader) ([]dto.CreateProductRequest, error) {
	cr := newCSVReader(r)
	var out []dto.CreateProductRequest
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if isHeader(line, record) {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("línea %d: se esperan al menos 2 columnas (name, bag_kg)", line)
		}
		bagKg, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil || bagKg <= 0 {
			return nil, fmt.Errorf("línea %d: bag_kg inválido %q", line, record[1])
		}
		in := dto.CreateProductRequest{Name: strings.TrimSpace(record[0]), BagKg: bagKg}
		if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
			active, err := strconv.ParseBool(strings.TrimSpace(record[2]))
			if err != nil {
				return nil, fmt.Errorf("línea %d: active inválido %q", line, record[2])
			}
			in.Active = &active
		}
		out = append(out, in)
	}
	return out, nil
}

// readCustomers columnas: name[, phone[, tax_id[, note]]].
func readCustomers(r io.Reader) ([]dto.CreateCustomerRequest, error) {
	cr := newCSVReader(r)
	var out []dto.CreateCustomerRequest
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if isHeader(line, record) {
			continue
		}
		col := func(i int) string {
			if i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		if col(0) == "" {
			return nil, fmt.Errorf("línea %d: name vacío", line)
		}
		out = append(out, dto.CreateCustomerRequest{Name: col(0), Phone: col(1), TaxID: col(2), Note: col(3)})
	}
	return out, nil
}
