package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

const transactionSchemaURL = "https://schemas.insightdelivered.local/bcp/normalized-transaction.schema.json"

// transactionSchema describes the NormalizedTransaction shape.
const transactionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["source", "template", "occurredAt", "amount", "exchangeRate", "confidence"],
  "properties": {
    "source": {"const": "BCP"},
    "template": {"enum": ["card_purchase", "online_purchase", "atm_withdrawal", "account_transfer", "incoming_credit", "service_payment", "fee_commission"]},
    "occurredAt": {
      "type": "string",
      "pattern": "^\\d{4}-\\d{2}-\\d{2}T\\d{2}:\\d{2}(:\\d{2}(\\.\\d+)?)?(Z|[+-]\\d{2}:\\d{2})$"
    },
    "amount": {"$ref": "#/$defs/money"},
    "balanceAfter": {"$ref": "#/$defs/money"},
    "exchangeRate": {
      "type": "object",
      "required": ["used"],
      "properties": {
        "used": {"type": "boolean"},
        "rate": {"type": "string", "pattern": "^\\d+(\\.\\d+)?$"}
      }
    },
    "channel": {"$ref": "#/$defs/text"},
    "merchant": {"$ref": "#/$defs/text"},
    "location": {"$ref": "#/$defs/text"},
    "cardLast4": {"type": "string", "pattern": "^\\d{4}$"},
    "accountRef": {"$ref": "#/$defs/text"},
    "operationId": {"$ref": "#/$defs/text"},
    "notes": {"$ref": "#/$defs/text"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1}
  },
  "$defs": {
    "money": {
      "type": "object",
      "required": ["value", "currency"],
      "properties": {
        "value": {"type": "string", "pattern": "^-?\\d+\\.\\d{2}$"},
        "currency": {"enum": ["PEN", "USD"]}
      }
    },
    "text": {"type": "string", "minLength": 1}
  }
}`

// compiledTransactionSchema is compiled once at init and read-only afterwards.
var compiledTransactionSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(transactionSchemaURL, strings.NewReader(transactionSchema)); err != nil {
		panic(fmt.Sprintf("transaction schema load failed: %v", err))
	}
	schema, err := c.Compile(transactionSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("transaction schema compile failed: %v", err))
	}
	return schema
}

// Validate checks tx against the NormalizedTransaction schema.
func Validate(tx models.NormalizedTransaction) error {
	raw, err := json.Marshal(tx)
	if err != nil {
		return &ValidationError{Template: tx.Template, Err: err}
	}
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Template: tx.Template, Err: err}
	}
	if err := compiledTransactionSchema.Validate(doc); err != nil {
		return &ValidationError{Template: tx.Template, Err: err}
	}
	return nil
}
