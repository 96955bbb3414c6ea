package importer

import (
	"strings"
	"testing"

	"github.com/evoluciona-hipotecaria/apiserver/config"
)

func TestParseAndFilterSolicitudPolicy(t *testing.T) {
	csv := strings.Join([]string{
		"Solicitud;Rut Vendedor;Nombre",
		"1001;12345678-5;Ana",
		";12345678-5;SinSolicitud",
		"1002;76453723-8;Pedro",
	}, "\n")

	p := NewParser(config.FilterPolicySolicitud)
	result, err := p.ParseAndFilter([]byte(csv))
	if err != nil {
		t.Fatalf("ParseAndFilter: %v", err)
	}
	if result.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", result.TotalRows)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("filtered rows = %d, want 2", len(result.Rows))
	}
	if result.Rows[0]["Nombre"] != "Ana" || result.Rows[1]["Nombre"] != "Pedro" {
		t.Errorf("rows out of order: %v", result.Rows)
	}
}

func TestParseAndFilterVigentePolicy(t *testing.T) {
	csv := strings.Join([]string{
		"Estado Mutuo;RUT Ejecutivo",
		"vigente;12345678-5",
		"VIGENTES;12345678-5",
		"liquidado;12345678-5",
		";12345678-5",
	}, "\n")

	p := NewParser(config.FilterPolicyVigente)
	result, err := p.ParseAndFilter([]byte(csv))
	if err != nil {
		t.Fatalf("ParseAndFilter: %v", err)
	}
	if result.TotalRows != 4 {
		t.Errorf("TotalRows = %d, want 4", result.TotalRows)
	}
	if len(result.Rows) != 2 {
		t.Errorf("filtered rows = %d, want 2", len(result.Rows))
	}
}

func TestParseAndFilterRaggedRows(t *testing.T) {
	csv := strings.Join([]string{
		"Solicitud;Rut Vendedor;Nombre",
		"1001;12345678-5",
		"1002;76453723-8;Pedro;extra",
	}, "\n")

	p := NewParser(config.FilterPolicySolicitud)
	result, err := p.ParseAndFilter([]byte(csv))
	if err != nil {
		t.Fatalf("ParseAndFilter: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("filtered rows = %d, want 2", len(result.Rows))
	}
	if got := result.Rows[0]["Nombre"]; got != "" {
		t.Errorf("missing trailing cell = %q, want empty", got)
	}
	if got := result.Rows[1]["Nombre"]; got != "Pedro" {
		t.Errorf("Nombre = %q, want Pedro", got)
	}
}

func TestParseAndFilterEmptyFile(t *testing.T) {
	p := NewParser(config.FilterPolicySolicitud)
	_, err := p.ParseAndFilter(nil)
	if !IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestParseAndFilterMissingRequiredHeader(t *testing.T) {
	csv := "Solicitud;Nombre\n1001;Ana\n"
	p := NewParser(config.FilterPolicySolicitud)
	_, err := p.ParseAndFilter([]byte(csv))
	if !IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), columnRutVendedor) {
		t.Errorf("error %q does not name the missing column", err)
	}
}

func TestSellerColumnPerPolicy(t *testing.T) {
	if got := NewParser(config.FilterPolicySolicitud).SellerColumn(); got != columnRutVendedor {
		t.Errorf("solicitud policy seller column = %q", got)
	}
	if got := NewParser(config.FilterPolicyVigente).SellerColumn(); got != columnRutEjecutivo {
		t.Errorf("vigente policy seller column = %q", got)
	}
}
