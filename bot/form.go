package bot

import (
	"errors"
	"strings"

	"burger-forge/models"
)

const skipCommand = "/skip"

var errRequired = errors.New("this field is required")

type formKind int

const (
	formDetails formKind = iota
	formPayment
)

type formField struct {
	prompt   string
	optional bool
	get      func(*form) string
	set      func(*form, string)
}

// form collects the details or payment step one chat message at a time.
// /skip keeps the current value, or clears an optional field that has none.
type form struct {
	kind    formKind
	idx     int
	details models.CustomerDetails
	payment models.PaymentDetails
}

var detailFields = []formField{
	{prompt: "Your full name?", get: func(f *form) string { return f.details.FullName }, set: func(f *form, v string) { f.details.FullName = v }},
	{prompt: "Phone number?", get: func(f *form) string { return f.details.Phone }, set: func(f *form, v string) { f.details.Phone = v }},
	{prompt: "Email? (optional)", optional: true, get: func(f *form) string { return f.details.Email }, set: func(f *form, v string) { f.details.Email = v }},
	{prompt: "Delivery address?", get: func(f *form) string { return f.details.Address }, set: func(f *form, v string) { f.details.Address = v }},
	{prompt: "Any notes for the kitchen? (optional)", optional: true, get: func(f *form) string { return f.details.Notes }, set: func(f *form, v string) { f.details.Notes = v }},
}

var paymentFields = []formField{
	{prompt: "Card number?", get: func(f *form) string { return f.payment.CardNumber }, set: func(f *form, v string) { f.payment.CardNumber = v }},
	{prompt: "Expiry (MM/YY)?", get: func(f *form) string { return f.payment.Expiry }, set: func(f *form, v string) { f.payment.Expiry = v }},
	{prompt: "CVC?", get: func(f *form) string { return f.payment.CVC }, set: func(f *form, v string) { f.payment.CVC = v }},
	{prompt: "Name on card?", get: func(f *form) string { return f.payment.CardholderName }, set: func(f *form, v string) { f.payment.CardholderName = v }},
}

func newDetailsForm(current models.CustomerDetails) *form {
	return &form{kind: formDetails, details: current}
}

// newPaymentForm always starts blank; card data is never echoed back into the chat.
func newPaymentForm() *form {
	return &form{kind: formPayment}
}

func (f *form) fields() []formField {
	if f.kind == formPayment {
		return paymentFields
	}
	return detailFields
}

func (f *form) done() bool {
	return f.idx >= len(f.fields())
}

// Prompt is the question for the current field.
func (f *form) Prompt() string {
	if f.done() {
		return ""
	}
	fld := f.fields()[f.idx]
	cur := fld.get(f)
	switch {
	case cur != "":
		return fld.prompt + "\nCurrently: " + cur + "\n(" + skipCommand + " to keep it)"
	case fld.optional:
		return fld.prompt + "\n(" + skipCommand + " to leave empty)"
	}
	return fld.prompt
}

// Answer records text for the current field and reports whether the form is complete.
func (f *form) Answer(text string) (bool, error) {
	if f.done() {
		return true, nil
	}
	fld := f.fields()[f.idx]
	text = strings.TrimSpace(text)
	if text == skipCommand {
		if fld.get(f) == "" && !fld.optional {
			return false, errRequired
		}
		f.idx++
		return f.done(), nil
	}
	if text == "" {
		return false, errRequired
	}
	fld.set(f, text)
	f.idx++
	return f.done(), nil
}
