package services

import (
	"fmt"
	"math/rand/v2"

	"burger-forge/models"
)

// FormDefaults produces the initial checkout form values for a fresh session.
type FormDefaults func() (models.CustomerDetails, models.PaymentDetails)

// EmptyForm leaves every field blank except fulfillment, which starts at delivery.
func EmptyForm() (models.CustomerDetails, models.PaymentDetails) {
	return models.CustomerDetails{Fulfillment: models.FulfillmentDelivery}, models.PaymentDetails{}
}

var (
	demoNames   = []string{"Alex Rivera", "Jordan Lee", "Sam Okafor", "Morgan Chen", "Riley Novak"}
	demoStreets = []string{"Foundry Ave", "Rivet St", "Anvil Way", "Kiln Rd", "Bessemer Blvd"}
)

// DemoForm fills the forms with a random sample customer and test card.
func DemoForm() (models.CustomerDetails, models.PaymentDetails) {
	name := demoNames[rand.IntN(len(demoNames))]
	d := models.CustomerDetails{
		FullName:    name,
		Phone:       fmt.Sprintf("+1 412 555 %04d", rand.IntN(10000)),
		Address:     fmt.Sprintf("%d %s, Pittsburgh", 100+rand.IntN(900), demoStreets[rand.IntN(len(demoStreets))]),
		Fulfillment: models.FulfillmentDelivery,
	}
	p := models.PaymentDetails{
		CardNumber:     "4242 4242 4242 4242",
		Expiry:         fmt.Sprintf("%02d/%02d", 1+rand.IntN(12), 28+rand.IntN(5)),
		CVC:            fmt.Sprintf("%03d", rand.IntN(1000)),
		CardholderName: name,
	}
	return d, p
}
