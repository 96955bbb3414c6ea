package importer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"15/03/2024", "2024-03-15"},
		{"15-03-2024", "2024-03-15"},
		{"01/07/24", "2024-07-01"},
		{"01/07/95", "1995-07-01"},
		{"45000", "2023-03-15"},
		{"2023-11-05", "2023-11-05"},
	}
	for _, tc := range cases {
		got := parseDate(tc.in)
		if got == nil {
			t.Errorf("parseDate(%q) = nil", tc.in)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("parseDate(%q) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestParseDateUnparseable(t *testing.T) {
	for _, in := range []string{"", "no es fecha", "??/??/??"} {
		if got := parseDate(in); got != nil {
			t.Errorf("parseDate(%q) = %v, want nil", in, got)
		}
	}
}

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234.567,89", "1234567.89"},
		{"1000", "1000"},
		{"0,5", "0.5"},
	}
	for _, tc := range cases {
		got := parseMoney(tc.in)
		if !got.Valid {
			t.Errorf("parseMoney(%q) not valid", tc.in)
			continue
		}
		want, _ := decimal.NewFromString(tc.want)
		if !got.Decimal.Equal(want) {
			t.Errorf("parseMoney(%q) = %s, want %s", tc.in, got.Decimal, want)
		}
	}

	for _, in := range []string{"", "UF 1.000"} {
		if got := parseMoney(in); got.Valid {
			t.Errorf("parseMoney(%q) = %s, want null", in, got.Decimal)
		}
	}
}

func TestParseBoolTriState(t *testing.T) {
	for _, in := range []string{"si", "Sí", "yes"} {
		got := parseBool(in)
		if got == nil || !*got {
			t.Errorf("parseBool(%q) = %v, want true", in, got)
		}
	}
	if got := parseBool("no"); got == nil || *got {
		t.Errorf("parseBool(no) = %v, want false", got)
	}
	for _, in := range []string{"", "tal vez"} {
		if got := parseBool(in); got != nil {
			t.Errorf("parseBool(%q) = %v, want nil", in, got)
		}
	}
}

func TestTransformResolvesSellerAndTypes(t *testing.T) {
	rows := []Row{
		{
			"Rut Vendedor":       "12.345.678-5",
			"Solicitud":          "1001",
			"Fecha de escritura": "15/03/2024",
			"Valor Venta":        "1.234.567,89",
			"Pronto Pago":        "si",
			"Nombre":             "Ana",
		},
	}
	userMap := map[string]string{"12345678-5": "user-1"}

	tr := NewTransformer("Rut Vendedor")
	result := tr.Transform(rows, userMap)
	if len(result.Records) != 1 || result.Skipped != 0 {
		t.Fatalf("records=%d skipped=%d", len(result.Records), result.Skipped)
	}

	op := result.Records[0]
	if op.UserID != "user-1" {
		t.Errorf("UserID = %q", op.UserID)
	}
	if op.RutVendedor != "12345678-5" {
		t.Errorf("RutVendedor = %q", op.RutVendedor)
	}
	if op.Solicitud == nil || *op.Solicitud != 1001 {
		t.Errorf("Solicitud = %v", op.Solicitud)
	}
	wantDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if op.FechaEscritura == nil || !op.FechaEscritura.Equal(wantDate) {
		t.Errorf("FechaEscritura = %v", op.FechaEscritura)
	}
	if !op.ValorVenta.Valid || op.ValorVenta.Decimal.String() != "1234567.89" {
		t.Errorf("ValorVenta = %v", op.ValorVenta)
	}
	if op.ProntoPago == nil || !*op.ProntoPago {
		t.Errorf("ProntoPago = %v", op.ProntoPago)
	}
	if op.Nombre == nil || *op.Nombre != "Ana" {
		t.Errorf("Nombre = %v", op.Nombre)
	}
}

func TestTransformSkipsUnresolvedSeller(t *testing.T) {
	rows := []Row{
		{"Rut Vendedor": "12345678-5", "Nombre": "ok"},
		{"Rut Vendedor": "99999999-9", "Nombre": "huérfano"},
	}
	userMap := map[string]string{"12345678-5": "user-1"}

	result := NewTransformer("Rut Vendedor").Transform(rows, userMap)
	if len(result.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(result.Records))
	}
	if result.Skipped != 1 || len(result.Errors) != 1 {
		t.Fatalf("skipped=%d errors=%d", result.Skipped, len(result.Errors))
	}
	if result.Errors[0].Row != 2 {
		t.Errorf("error row = %d, want 2", result.Errors[0].Row)
	}
}
