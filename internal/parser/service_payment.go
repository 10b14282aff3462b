package parser

import (
	"regexp"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// ServicePaymentExtractor handles utility and bill payments.
//
//	Constancia de pago de servicio
//	Empresa: LUZ DEL SUR
//	Servicio: RECIBOS
//	Código de cliente: 1234567
//	Titular del servicio: JUAN PEREZ
//	Monto del pago: S/ 154.30
type ServicePaymentExtractor struct{}

func (e *ServicePaymentExtractor) Template() models.Template {
	return models.TemplateServicePayment
}

var (
	serviceAmount = []*regexp.Regexp{
		labeled([]string{"monto del pago", "monto pagado", "importe pagado", "total pagado", "monto total"}, moneyValue),
		labeled([]string{"pagaste", "pago de"}, moneyValue),
		labeled([]string{"monto", "importe"}, moneyValue),
	}
	serviceCompany = []*regexp.Regexp{
		labeled([]string{"empresa", "institucion", "entidad"}, textValue),
		regexp.MustCompile(`(?i)pago (?:de servicio )?(?:a|en)\s+([^\n]+)`),
	}
	serviceName = []*regexp.Regexp{
		labeled([]string{"nombre del servicio", "servicio"}, textValue),
	}
	serviceCustomerCode = []*regexp.Regexp{
		labeled([]string{"codigo de cliente", "codigo de usuario", "codigo de suministro", "numero de suministro", "suministro", "codigo"}, `([A-Za-z0-9\-]{3,})`),
	}
	serviceHolder = []*regexp.Regexp{
		labeled([]string{"titular del servicio", "titular"}, textValue),
	}
	serviceAccount = []*regexp.Regexp{
		labeled([]string{"cuenta de cargo", "cuenta cargo", "cuenta de origen", "cargado en"}, accountValue),
	}
)

// serviceSignals counts amount, date, company, customer code, operation id
// and service name.
const serviceSignals = 6

func (e *ServicePaymentExtractor) Extract(body string, opts ExtractOptions) (Extraction, error) {
	b := newTxBuilder(e.Template(), body, opts, serviceSignals)
	if err := b.amount(serviceAmount); err != nil {
		return Extraction{}, err
	}
	if err := b.occurredAt(); err != nil {
		return Extraction{}, err
	}

	b.text("company", &b.tx.Merchant, serviceCompany)
	var service, code string
	b.text("service_name", &service, serviceName)
	b.text("customer_code", &code, serviceCustomerCode)
	b.operationID()
	if !b.account("account_ref", serviceAccount) {
		b.cardLast4()
	}
	holder := cleanField(firstSubmatch(body, serviceHolder))
	b.channel("")

	if b.tx.Merchant == "" && service != "" {
		b.tx.Merchant = service
	}
	b.tx.Notes = joinNotes(
		prefixed("Servicio: ", service),
		prefixed("Código: ", code),
		prefixed("Titular: ", holder),
	)
	b.balanceAfter()
	return b.build(), nil
}
