package parser

import (
	"testing"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		body     string
		expected models.Template
		found    bool
	}{
		{
			name:     "card purchase",
			subject:  "BCP: Realizaste un consumo",
			body:     cardPurchaseBody,
			expected: models.TemplateCardPurchase,
			found:    true,
		},
		{
			name:     "online purchase",
			subject:  "Compra por internet aprobada",
			body:     onlinePurchaseBody,
			expected: models.TemplateOnlinePurchase,
			found:    true,
		},
		{
			name:     "atm withdrawal",
			subject:  "Retiro en cajero BCP",
			body:     atmWithdrawalBody,
			expected: models.TemplateATMWithdrawal,
			found:    true,
		},
		{
			name:     "account transfer",
			subject:  "Constancia de transferencia BCP",
			body:     accountTransferBody,
			expected: models.TemplateAccountTransfer,
			found:    true,
		},
		{
			name:     "incoming credit",
			subject:  "Recibiste un abono",
			body:     incomingCreditBody,
			expected: models.TemplateIncomingCredit,
			found:    true,
		},
		{
			name:     "service payment",
			subject:  "Constancia de pago de servicio",
			body:     servicePaymentBody,
			expected: models.TemplateServicePayment,
			found:    true,
		},
		{
			name:     "fee commission",
			subject:  "Cobro de comisión de mantenimiento",
			body:     feeCommissionBody,
			expected: models.TemplateFeeCommission,
			found:    true,
		},
		{
			name:    "subject matches but no anchors",
			subject: "BCP: Realizaste un consumo",
			body:    "Hola, gracias por confiar en nosotros.",
		},
		{
			name:    "subject matches with a single anchor",
			subject: "BCP: Realizaste un consumo",
			body:    "Realizaste un consumo.",
		},
		{
			name:    "anchors match but subject does not",
			subject: "Novedades BCP",
			body:    cardPurchaseBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.subject, tt.body)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v (got %q)", ok, tt.found, got)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDetect_TieBreaks(t *testing.T) {
	def := func(name models.Template, priority int, anchors ...string) TemplateDefinition {
		return TemplateDefinition{
			Name:                 name,
			SubjectPatterns:      patterns(`aviso`),
			BodyAnchorPatterns:   patterns(anchors...),
			Priority:             priority,
			MinimumAnchorMatches: minimumAnchorMatches,
		}
	}

	tests := []struct {
		name     string
		library  []TemplateDefinition
		expected models.Template
	}{
		{
			name: "more anchors wins over priority",
			library: []TemplateDefinition{
				def(models.TemplateFeeCommission, 10, `alfa`, `beta`, `gamma`),
				def(models.TemplateCardPurchase, 99, `alfa`, `beta`),
			},
			expected: models.TemplateFeeCommission,
		},
		{
			name: "equal anchors go to higher priority",
			library: []TemplateDefinition{
				def(models.TemplateFeeCommission, 10, `alfa`, `beta`),
				def(models.TemplateCardPurchase, 99, `alfa`, `beta`),
			},
			expected: models.TemplateCardPurchase,
		},
		{
			name: "full tie goes to first registered",
			library: []TemplateDefinition{
				def(models.TemplateIncomingCredit, 50, `alfa`, `beta`),
				def(models.TemplateCardPurchase, 50, `alfa`, `beta`),
			},
			expected: models.TemplateIncomingCredit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := detect(tt.library, "Aviso", "alfa beta gamma")
			if !ok {
				t.Fatal("expected a template")
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLibraryCoversEveryTemplate(t *testing.T) {
	lib := Library()
	if len(lib) != len(models.Templates) {
		t.Fatalf("library has %d definitions, want %d", len(lib), len(models.Templates))
	}
	for i, tmpl := range models.Templates {
		if lib[i].Name != tmpl {
			t.Errorf("definition %d is %q, want %q", i, lib[i].Name, tmpl)
		}
		if lib[i].MinimumAnchorMatches != 2 {
			t.Errorf("%s: MinimumAnchorMatches = %d, want 2", tmpl, lib[i].MinimumAnchorMatches)
		}
		ex, err := NewExtractor(tmpl)
		if err != nil {
			t.Errorf("%s: %v", tmpl, err)
			continue
		}
		if ex.Template() != tmpl {
			t.Errorf("extractor for %q reports %q", tmpl, ex.Template())
		}
	}
}

func TestNewExtractor_Unknown(t *testing.T) {
	if _, err := NewExtractor("wire_transfer"); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestIsPotentiallyTransactional(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		body     string
		sender   string
		expected bool
	}{
		{"detected template", "BCP: Realizaste un consumo", cardPurchaseBody, "someone@example.com", true},
		{"whitelisted sender with hint", "Aviso BCP", "Monto: S/ 50.00", "notificaciones@notificacionesbcp.com.pe", true},
		{"display name address", "Aviso BCP", "Número de operación 123456", `"BCP" <Alertas@bcp.com.pe>`, true},
		{"whitelisted sender without hint", "Actualiza tus datos", "Hola, revisa tu perfil", "notificaciones@notificacionesbcp.com.pe", false},
		{"unknown sender with hint", "Aviso", "Monto: S/ 50.00", "promo@tienda.pe", false},
		{"newsletter", "Novedades de la semana", "Conoce nuestras ofertas", "promo@tienda.pe", false},
		{"html body", "Aviso BCP", "<p>Realizaste un <b>pago</b></p>", "bcp@notificacionesbcp.com.pe", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPotentiallyTransactional(tt.subject, tt.body, tt.sender); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}
