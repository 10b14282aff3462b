package parser

import (
	"regexp"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// minimumAnchorMatches is the number of body anchors a template needs to be
// considered a candidate.
const minimumAnchorMatches = 2

// TemplateDefinition is the static matching configuration of a template.
// Subject patterns run against the raw subject; anchors run against the
// ASCII-folded body.
type TemplateDefinition struct {
	Name                 models.Template
	SubjectPatterns      []*regexp.Regexp
	BodyAnchorPatterns   []*regexp.Regexp
	Priority             int
	MinimumAnchorMatches int
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// templateLibrary is ordered; registration order is the final tie-break.
var templateLibrary = []TemplateDefinition{
	{
		Name: models.TemplateCardPurchase,
		SubjectPatterns: patterns(
			`realizaste un consumo`,
			`consumo (?:con|en) tu tarjeta`,
			`consumo realizado`,
		),
		BodyAnchorPatterns: patterns(
			`realizaste un consumo`,
			`monto (?:de|del) consumo|total del consumo`,
			`tarjeta de (?:credito|debito)`,
			`comercio|establecimiento`,
			`(?:numero|nro\.?) de operacion`,
			`fecha y hora|fecha de (?:la )?operacion`,
		),
		Priority:             60,
		MinimumAnchorMatches: minimumAnchorMatches,
	},
	{
		Name: models.TemplateOnlinePurchase,
		SubjectPatterns: patterns(
			`compra (?:por|en) internet`,
			`consumo (?:por|en) internet`,
			`compra online`,
		),
		BodyAnchorPatterns: patterns(
			`(?:compra|consumo) (?:por|en) internet|compra online`,
			`monto (?:de la compra|de consumo|total)`,
			`comercio|empresa|sitio web`,
			`tarjeta`,
			`(?:numero|nro\.?) de operacion`,
		),
		Priority:             70,
		MinimumAnchorMatches: minimumAnchorMatches,
	},
	{
		Name: models.TemplateATMWithdrawal,
		SubjectPatterns: patterns(
			`retiro`,
			`retiraste`,
		),
		BodyAnchorPatterns: patterns(
			`retiro|retiraste`,
			`cajero|agente bcp|\batm\b`,
			`monto retirado|monto del retiro`,
			`cuenta|tarjeta`,
			`(?:numero|nro\.?) de operacion`,
		),
		Priority:             50,
		MinimumAnchorMatches: minimumAnchorMatches,
	},
	{
		Name: models.TemplateAccountTransfer,
		SubjectPatterns: patterns(
			`transferencia`,
			`transferiste`,
			`env[ií]o de dinero`,
		),
		BodyAnchorPatterns: patterns(
			`monto transferido|monto enviado`,
			`cuenta (?:de )?origen|cuenta de cargo`,
			`cuenta (?:de )?destino`,
			`beneficiario|destinatario|enviado a`,
			`banco (?:de )?destino`,
			`(?:numero|nro\.?) de operacion`,
		),
		Priority:             40,
		MinimumAnchorMatches: minimumAnchorMatches,
	},
	{
		Name: models.TemplateIncomingCredit,
		SubjectPatterns: patterns(
			`recibiste`,
			`abono`,
			`dep[oó]sito`,
			`te (?:depositaron|transfirieron|enviaron)`,
		),
		BodyAnchorPatterns: patterns(
			`recibiste|abono|deposito`,
			`monto (?:recibido|abonado|depositado)`,
			`cuenta (?:de )?(?:abono|destino)`,
			`ordenante|enviado por|remitente`,
			`(?:numero|nro\.?) de operacion`,
		),
		Priority:             30,
		MinimumAnchorMatches: minimumAnchorMatches,
	},
	{
		Name: models.TemplateServicePayment,
		SubjectPatterns: patterns(
			`pago de servicio`,
			`pagaste`,
			`constancia de pago`,
			`pago de recibo`,
		),
		BodyAnchorPatterns: patterns(
			`servicio`,
			`empresa`,
			`codigo de (?:cliente|usuario)|suministro`,
			`titular`,
			`monto (?:del pago|pagado)`,
			`(?:numero|nro\.?) de operacion`,
		),
		Priority:             45,
		MinimumAnchorMatches: minimumAnchorMatches,
	},
	{
		Name: models.TemplateFeeCommission,
		SubjectPatterns: patterns(
			`comisi[oó]n`,
			`cargo`,
			`cobro`,
			`membres[ií]a`,
		),
		BodyAnchorPatterns: patterns(
			`comision`,
			`cargo|cobro`,
			`membresia|mantenimiento|portes`,
			`monto`,
			`cuenta|tarjeta`,
		),
		Priority:             20,
		MinimumAnchorMatches: minimumAnchorMatches,
	},
}

// Library returns the template definitions in registration order. The
// slice is shared and must not be modified.
func Library() []TemplateDefinition {
	return templateLibrary
}
