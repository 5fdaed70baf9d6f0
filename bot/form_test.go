package bot

import (
	"errors"
	"strings"
	"testing"

	"burger-forge/models"
)

func TestDetailsFormSequence(t *testing.T) {
	f := newDetailsForm(models.CustomerDetails{Fulfillment: models.FulfillmentPickup})
	answers := []string{"Alex Rivera", "+1 412 555 0101", "/skip", "12 Foundry Ave", "extra pickles"}
	for i, a := range answers {
		done, err := f.Answer(a)
		if err != nil {
			t.Fatalf("Answer(%q) error = %v", a, err)
		}
		if done != (i == len(answers)-1) {
			t.Fatalf("Answer(%q) done = %v at field %d", a, done, i)
		}
	}
	want := models.CustomerDetails{
		FullName:    "Alex Rivera",
		Phone:       "+1 412 555 0101",
		Address:     "12 Foundry Ave",
		Notes:       "extra pickles",
		Fulfillment: models.FulfillmentPickup,
	}
	if f.details != want {
		t.Errorf("details = %+v, want %+v", f.details, want)
	}
	if !f.details.Complete() {
		t.Error("details should be complete")
	}
}

func TestFormRequiredFields(t *testing.T) {
	f := newDetailsForm(models.CustomerDetails{})
	for _, a := range []string{"/skip", "   ", ""} {
		if _, err := f.Answer(a); !errors.Is(err, errRequired) {
			t.Errorf("Answer(%q) on empty required field: err = %v, want errRequired", a, err)
		}
	}
	if !strings.HasPrefix(f.Prompt(), "Your full name?") {
		t.Errorf("Prompt() = %q, want the name question again", f.Prompt())
	}
}

func TestFormSkipKeepsCurrentValue(t *testing.T) {
	f := newDetailsForm(models.CustomerDetails{FullName: "Jordan", Phone: "555"})
	if !strings.Contains(f.Prompt(), "Currently: Jordan") {
		t.Errorf("Prompt() = %q, want the current value shown", f.Prompt())
	}
	f.Answer("/skip")
	f.Answer("/skip")
	if f.details.FullName != "Jordan" || f.details.Phone != "555" {
		t.Errorf("details = %+v, want kept values", f.details)
	}
}

func TestPaymentForm(t *testing.T) {
	f := newPaymentForm()
	var done bool
	for _, a := range []string{"4242 4242 4242 4242", "12/29", "123", "Alex Rivera"} {
		var err error
		if done, err = f.Answer(a); err != nil {
			t.Fatalf("Answer(%q) error = %v", a, err)
		}
	}
	if !done || !f.payment.Complete() {
		t.Errorf("payment = %+v, done = %v; want complete", f.payment, done)
	}
	if f.Prompt() != "" {
		t.Errorf("Prompt() after completion = %q, want empty", f.Prompt())
	}
}
