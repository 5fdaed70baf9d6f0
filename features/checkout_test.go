package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"burger-forge/models"
	"burger-forge/services"
	"burger-forge/storage"

	"github.com/cucumber/godog"
)

type checkoutTestContext struct {
	ctx     context.Context
	decline bool
	session *services.Session
	lastAdd services.AddResult
	lastErr error
}

func (c *checkoutTestContext) reset() {
	c.ctx = context.Background()
	c.decline = false
	c.session = nil
	c.lastAdd = services.AddResult{}
	c.lastErr = nil
}

func (c *checkoutTestContext) s() *services.Session {
	if c.session != nil {
		return c.session
	}
	var settler services.Settler = services.NewSimulatedSettler(0)
	if c.decline {
		settler = services.SettlerFunc(func(ctx context.Context, amount int64, card models.PaymentDetails) (services.Receipt, error) {
			return services.Receipt{}, errors.New("card declined by issuer")
		})
	}
	sessions := services.NewSessions(services.SessionsConfig{
		Menu:    services.DefaultMenu(600),
		KV:      storage.NewMemory(),
		Settler: settler,
	})
	c.session = sessions.Get(c.ctx, "tg:1")
	return c.session
}

func (c *checkoutTestContext) aFreshStorefrontSession() error {
	return nil
}

func (c *checkoutTestContext) paymentsAreDeclined() error {
	if c.session != nil {
		return errors.New("declines must be configured before the session is used")
	}
	c.decline = true
	return nil
}

func (c *checkoutTestContext) iRequestItem(id int) error {
	c.lastAdd = c.s().RequestAdd(c.ctx, id)
	return nil
}

func (c *checkoutTestContext) iAddAddOn(id int) error {
	c.lastAdd = c.s().AddAddOn(c.ctx, id)
	return nil
}

func (c *checkoutTestContext) addAndResolve(id int, choice services.UpsellChoice) error {
	c.lastAdd = c.s().RequestAdd(c.ctx, id)
	if c.lastAdd.Outcome == services.AddOutcomeOffered {
		c.lastAdd = c.s().ResolveUpsell(c.ctx, choice)
	}
	return nil
}

func (c *checkoutTestContext) iAddItemAndDeclineTheMeal(id int) error {
	return c.addAndResolve(id, services.UpsellDecline)
}

func (c *checkoutTestContext) iAddItemAndAcceptTheMeal(id int) error {
	return c.addAndResolve(id, services.UpsellAccept)
}

func (c *checkoutTestContext) iAddItemAndAbandonTheOffer(id int) error {
	return c.addAndResolve(id, services.UpsellAbandon)
}

func (c *checkoutTestContext) iOpenCheckout() error {
	c.s().OpenCheckout()
	return nil
}

func (c *checkoutTestContext) iContinue() error {
	c.s().Advance()
	return nil
}

func (c *checkoutTestContext) iEnterMyDetails(name, phone, address string) error {
	if !c.s().SetDetails(models.CustomerDetails{FullName: name, Phone: phone, Address: address, Fulfillment: models.FulfillmentDelivery}) {
		return errors.New("details were not accepted")
	}
	return nil
}

func (c *checkoutTestContext) iEnterCard(number string) error {
	if !c.s().SetPayment(models.PaymentDetails{CardNumber: number, Expiry: "12/29", CVC: "123", CardholderName: "Card Holder"}) {
		return errors.New("card was not accepted")
	}
	return nil
}

func (c *checkoutTestContext) iPay() error {
	_, c.lastErr = c.s().Pay(c.ctx)
	return nil
}

func (c *checkoutTestContext) iHavePaidForMyCart() error {
	steps := []func() error{
		c.iOpenCheckout,
		c.iContinue,
		func() error { return c.iEnterMyDetails("Jordan", "555 0100", "7 Anvil Rd") },
		c.iContinue,
		func() error { return c.iEnterCard("4242 4242 4242 4242") },
		c.iPay,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return c.lastErr
}

func (c *checkoutTestContext) iCloseTheConfirmation() error {
	if !c.s().CloseCheckout() {
		return errors.New("confirmation could not be closed")
	}
	return nil
}

func (c *checkoutTestContext) theCartHasLines(n int) error {
	if got := len(c.s().Cart().Items); got != n {
		return fmt.Errorf("expected %d cart lines, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartTotalIsCents(total int) error {
	if got := c.s().Cart().Total; got != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, got)
	}
	return nil
}

func (c *checkoutTestContext) theLastAddWas(outcome string) error {
	if string(c.lastAdd.Outcome) != outcome {
		return fmt.Errorf("expected outcome %q, got %q", outcome, c.lastAdd.Outcome)
	}
	return nil
}

func (c *checkoutTestContext) iCannotContinue() error {
	if c.s().Checkout().CanAdvance {
		return errors.New("expected the checkout to refuse continuing")
	}
	if c.s().Advance() {
		return errors.New("advance succeeded")
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutStepIs(step string) error {
	if got := c.s().Checkout().Step.String(); got != step {
		return fmt.Errorf("expected step %q, got %q", step, got)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutShowsAnErrorContaining(text string) error {
	if msg := c.s().Checkout().Error; !strings.Contains(msg, text) {
		return fmt.Errorf("expected error containing %q, got %q", text, msg)
	}
	return nil
}

func (c *checkoutTestContext) anOrderIsInMyHistory(total, lines int) error {
	orders, err := c.s().Orders(c.ctx)
	if err != nil {
		return err
	}
	if len(orders) != 1 {
		return fmt.Errorf("expected 1 order, got %d", len(orders))
	}
	if orders[0].Total != int64(total) || len(orders[0].Items) != lines {
		return fmt.Errorf("unexpected order %+v", orders[0])
	}
	return nil
}

func (c *checkoutTestContext) myHistoryIsEmpty() error {
	orders, err := c.s().Orders(c.ctx)
	if err != nil {
		return err
	}
	if len(orders) != 0 {
		return fmt.Errorf("expected no orders, got %d", len(orders))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a fresh storefront session$`, tc.aFreshStorefrontSession)
	ctx.Step(`^payments are declined$`, tc.paymentsAreDeclined)
	ctx.Step(`^I have paid for my cart$`, tc.iHavePaidForMyCart)

	// When steps
	ctx.Step(`^I request item (\d+)$`, tc.iRequestItem)
	ctx.Step(`^I add item (\d+) and decline the meal$`, tc.iAddItemAndDeclineTheMeal)
	ctx.Step(`^I add item (\d+) and accept the meal$`, tc.iAddItemAndAcceptTheMeal)
	ctx.Step(`^I add item (\d+) and abandon the offer$`, tc.iAddItemAndAbandonTheOffer)
	ctx.Step(`^I add add-on (\d+)$`, tc.iAddAddOn)
	ctx.Step(`^I open checkout$`, tc.iOpenCheckout)
	ctx.Step(`^I continue$`, tc.iContinue)
	ctx.Step(`^I enter my details as "([^"]*)", "([^"]*)", "([^"]*)"$`, tc.iEnterMyDetails)
	ctx.Step(`^I enter card "([^"]*)"$`, tc.iEnterCard)
	ctx.Step(`^I pay$`, tc.iPay)
	ctx.Step(`^I close the confirmation$`, tc.iCloseTheConfirmation)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines$`, tc.theCartHasLines)
	ctx.Step(`^the cart total is (\d+) cents$`, tc.theCartTotalIsCents)
	ctx.Step(`^the last add was "([^"]*)"$`, tc.theLastAddWas)
	ctx.Step(`^I cannot continue$`, tc.iCannotContinue)
	ctx.Step(`^the checkout step is "([^"]*)"$`, tc.theCheckoutStepIs)
	ctx.Step(`^the checkout shows an error containing "([^"]*)"$`, tc.theCheckoutShowsAnErrorContaining)
	ctx.Step(`^an order totalling (\d+) cents with (\d+) lines is in my history$`, tc.anOrderIsInMyHistory)
	ctx.Step(`^my history is empty$`, tc.myHistoryIsEmpty)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
