package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"burger-forge/config"
	"burger-forge/models"
	"burger-forge/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Owner returns the storage owner for a Telegram user.
func Owner(userID int64) string {
	return "tg:" + strconv.FormatInt(userID, 10)
}

// userFromOwner is the inverse of Owner. Private chats share the user's id.
func userFromOwner(owner string) (int64, bool) {
	rest, ok := strings.CutPrefix(owner, "tg:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	return id, err == nil
}

type Bot struct {
	api      *tgbotapi.BotAPI
	sessions *services.Sessions
	toasts   *Toasts
	logger   *zap.Logger

	formsMu sync.Mutex
	forms   map[int64]*form
}

func New(cfg config.TelegramConfig, sessions *services.Sessions, toasts *Toasts, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	if toasts == nil {
		toasts = NewToasts()
	}
	return &Bot{
		api:      api,
		sessions: sessions,
		toasts:   toasts,
		logger:   logger.Named("bot"),
		forms:    make(map[int64]*form),
	}, nil
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "menu", Description: "Browse the menu"},
		tgbotapi.BotCommand{Command: "cart", Description: "Your cart"},
		tgbotapi.BotCommand{Command: "checkout", Description: "Check out"},
		tgbotapi.BotCommand{Command: "orders", Description: "Order history"},
		tgbotapi.BotCommand{Command: "login", Description: "Sign in"},
	)
	_, err := b.api.Request(cfg)
	return err
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	if err := b.setBotCommands(); err != nil {
		b.logger.Warn("failed to register bot commands", zap.Error(err))
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message != nil && update.Message.From != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func markup(c Card) *tgbotapi.InlineKeyboardMarkup {
	if len(c.Buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range c.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// show edits messageID in place, or sends a new message when messageID is 0
// or the old message is gone.
func (b *Bot) show(chatID int64, messageID int, c Card) {
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, c.Text)
		if kb := markup(c); kb != nil {
			edit.ReplyMarkup = kb
		} else {
			edit.ReplyMarkup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		}
		_, err := b.api.Send(edit)
		if err == nil {
			return
		}
		errStr := err.Error()
		if strings.Contains(errStr, "not modified") {
			return
		}
		if !strings.Contains(errStr, "not found") {
			b.logger.Warn("edit failed", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
	msg := tgbotapi.NewMessage(chatID, c.Text)
	if kb := markup(c); kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	s := b.sessions.Get(ctx, Owner(userID))

	if msg.IsCommand() && msg.Command() != "skip" {
		b.dropForm(userID)
		switch msg.Command() {
		case "start":
			b.send(chatID, "Welcome to Burger Forge! 🔥")
			b.show(chatID, 0, CategoriesCard(b.sessions.Menu(), s.Cart().ItemCount))
		case "menu":
			b.show(chatID, 0, CategoriesCard(b.sessions.Menu(), s.Cart().ItemCount))
		case "cart":
			b.show(chatID, 0, CartCard(s.Cart()))
		case "checkout":
			b.show(chatID, 0, CheckoutCard(s.OpenCheckout()))
		case "orders":
			b.handleOrders(ctx, chatID, s)
		case "login":
			b.handleLogin(ctx, chatID, msg, s)
		case "cancel":
			b.send(chatID, "Cancelled.")
		}
		return
	}

	if b.answerForm(chatID, userID, msg.Text, s) {
		return
	}
	b.show(chatID, 0, CategoriesCard(b.sessions.Menu(), s.Cart().ItemCount))
}

func (b *Bot) handleOrders(ctx context.Context, chatID int64, s *services.Session) {
	orders, err := s.Orders(ctx)
	if err != nil {
		b.logger.Error("failed to load orders", zap.String("owner", s.Owner()), zap.Error(err))
		b.send(chatID, "Could not load your orders. Please try again.")
		return
	}
	b.show(chatID, 0, HistoryCard(orders))
}

// handleLogin signs in with "/login <name>", falling back to the Telegram profile name.
func (b *Bot) handleLogin(ctx context.Context, chatID int64, msg *tgbotapi.Message, s *services.Session) {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		name = strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	}
	u, err := s.Login(ctx, name, "")
	if err != nil {
		b.send(chatID, "Send /login followed by your name.")
		return
	}
	b.send(chatID, "Signed in as "+u.Name+".")
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	msgID := cq.Message.MessageID
	owner := Owner(cq.From.ID)
	s := b.sessions.Get(ctx, owner)

	toast := ""
	defer func() {
		if t := b.toasts.Take(owner); t != "" {
			toast = t
		}
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, toast)); err != nil {
			b.logger.Debug("answer callback failed", zap.Error(err))
		}
	}()

	cb, err := parseCallback(cq.Data)
	if err != nil {
		b.logger.Debug("ignoring callback", zap.String("data", cq.Data), zap.Error(err))
		return
	}

	menu := b.sessions.Menu()
	switch cb.Kind {
	case cbNoop:
	case cbMenu:
		b.show(chatID, msgID, CategoriesCard(menu, s.Cart().ItemCount))
	case cbCart:
		b.show(chatID, msgID, CartCard(s.Cart()))
	case cbCategory:
		b.show(chatID, msgID, CategoryCard(menu, cb.Category))
	case cbAdd:
		res := s.RequestAdd(ctx, cb.CatalogID)
		switch res.Outcome {
		case services.AddOutcomeOffered:
			b.show(chatID, 0, UpsellCard(*res.Offer))
		case services.AddOutcomeBlocked:
			toast = blockedToast(s)
		case services.AddOutcomeUnknown:
			toast = "That item is not on the menu."
		}
	case cbMeal:
		res := s.ResolveUpsell(ctx, cb.Choice)
		switch res.Outcome {
		case services.AddOutcomeAdded:
			b.show(chatID, msgID, CartCard(s.Cart()))
		case services.AddOutcomeBlocked:
			toast = blockedToast(s)
			b.show(chatID, msgID, Card{Text: "Offer cancelled."})
		default:
			b.show(chatID, msgID, CategoriesCard(menu, s.Cart().ItemCount))
		}
	case cbQuantity:
		if !s.AdjustQuantity(ctx, cb.CatalogID, cb.Meal, cb.Delta) {
			toast = blockedToast(s)
		}
		b.show(chatID, msgID, CartCard(s.Cart()))
	case cbRemove:
		if !s.RemoveItem(ctx, cb.CatalogID, cb.Meal) {
			toast = blockedToast(s)
		}
		b.show(chatID, msgID, CartCard(s.Cart()))
	case cbAddOn:
		switch s.AddAddOn(ctx, cb.CatalogID).Outcome {
		case services.AddOutcomeAdded:
		case services.AddOutcomeBlocked:
			toast = blockedToast(s)
		default:
			toast = "Add-ons can only be added while reviewing."
		}
		b.show(chatID, msgID, CheckoutCard(s.Checkout()))
	case cbFulfillment:
		d := s.Checkout().Details
		d.Fulfillment = cb.Ful
		if !s.SetDetails(d) {
			toast = "Checkout can no longer be edited."
		}
		b.show(chatID, msgID, CheckoutCard(s.Checkout()))
	case cbCheckout:
		toast = b.handleCheckout(ctx, chatID, msgID, cq.From.ID, cb.Action, s)
	}
}

func blockedToast(s *services.Session) string {
	v := s.Checkout()
	if v.Processing {
		return "A payment is in progress."
	}
	if v.Step == services.StepConfirmed {
		return "Close the order confirmation first."
	}
	if _, ok := s.PendingOffer(); ok {
		return "Choose meal or not first."
	}
	return "Not possible right now."
}

// handleCheckout drives the checkout panel and returns a toast, if any.
func (b *Bot) handleCheckout(ctx context.Context, chatID int64, msgID int, userID int64, action string, s *services.Session) string {
	switch action {
	case "open":
		b.show(chatID, msgID, CheckoutCard(s.OpenCheckout()))
	case "next":
		if !s.Advance() {
			return "Complete this step first."
		}
		v := s.Checkout()
		b.show(chatID, msgID, CheckoutCard(v))
		switch {
		case v.Step == services.StepDetails && !v.CanAdvance:
			b.startForm(chatID, userID, newDetailsForm(v.Details))
		case v.Step == services.StepPayment && !v.PaymentSet:
			b.startForm(chatID, userID, newPaymentForm())
		}
	case "back":
		b.dropForm(userID)
		if !s.Back() {
			return "You can't go back now."
		}
		b.show(chatID, msgID, CheckoutCard(s.Checkout()))
	case "form":
		v := s.Checkout()
		switch v.Step {
		case services.StepDetails:
			b.startForm(chatID, userID, newDetailsForm(v.Details))
		case services.StepPayment:
			b.startForm(chatID, userID, newPaymentForm())
		}
	case "pay":
		b.dropForm(userID)
		b.pay(ctx, chatID, msgID, s)
	case "close":
		if !s.CloseCheckout() {
			return ""
		}
		b.show(chatID, msgID, CategoriesCard(b.sessions.Menu(), s.Cart().ItemCount))
	}
	return ""
}

// pay settles in the background; the card shows a processing state until the
// result is known.
func (b *Bot) pay(ctx context.Context, chatID int64, msgID int, s *services.Session) {
	v := s.Checkout()
	if v.Step != services.StepPayment || v.Processing || !v.PaymentSet {
		b.show(chatID, msgID, CheckoutCard(v))
		return
	}
	v.Processing = true
	b.show(chatID, msgID, CheckoutCard(v))

	go func() {
		_, err := s.Pay(ctx)
		switch {
		case errors.Is(err, services.ErrSettlementInProgress):
			return
		case err != nil:
			b.logger.Info("payment not completed", zap.String("owner", s.Owner()), zap.Error(err))
		}
		b.show(chatID, msgID, CheckoutCard(s.Checkout()))
	}()
}

func (b *Bot) startForm(chatID, userID int64, f *form) {
	b.formsMu.Lock()
	b.forms[userID] = f
	b.formsMu.Unlock()
	b.send(chatID, f.Prompt())
}

func (b *Bot) dropForm(userID int64) {
	b.formsMu.Lock()
	delete(b.forms, userID)
	b.formsMu.Unlock()
}

// answerForm feeds text to the user's open form. It reports false when no form is open.
func (b *Bot) answerForm(chatID, userID int64, text string, s *services.Session) bool {
	b.formsMu.Lock()
	f, ok := b.forms[userID]
	if !ok {
		b.formsMu.Unlock()
		return false
	}
	done, err := f.Answer(text)
	if done {
		delete(b.forms, userID)
	}
	b.formsMu.Unlock()

	if err != nil {
		b.send(chatID, "This field is required.\n\n"+f.Prompt())
		return true
	}
	if !done {
		b.send(chatID, f.Prompt())
		return true
	}

	var saved bool
	if f.kind == formPayment {
		saved = s.SetPayment(f.payment)
	} else {
		saved = s.SetDetails(f.details)
	}
	if !saved {
		b.send(chatID, "Checkout can no longer be edited.")
	}
	b.show(chatID, 0, CheckoutCard(s.Checkout()))
	return true
}

// Kitchen forwards placed orders to the admin chat through the message bot.
type Kitchen struct {
	api    *tgbotapi.BotAPI
	admin  int64
	logger *zap.Logger
}

// NewKitchen returns nil when no message bot or admin chat is configured.
func NewKitchen(cfg config.TelegramConfig, logger *zap.Logger) (*Kitchen, error) {
	if cfg.MessageToken == "" || cfg.AdminID == 0 {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(cfg.MessageToken)
	if err != nil {
		return nil, fmt.Errorf("telegram message bot: %w", err)
	}
	return &Kitchen{api: api, admin: cfg.AdminID, logger: logger.Named("kitchen")}, nil
}

func (k *Kitchen) OrderPlaced(ctx context.Context, owner string, order models.Order) {
	c := KitchenCard(owner, order)
	if _, err := k.api.Send(tgbotapi.NewMessage(k.admin, c.Text)); err != nil {
		k.logger.Warn("failed to notify kitchen", zap.String("order_id", order.ID), zap.Error(err))
	}
}

// Toasts buffers the latest toast per owner until the bot answers the
// callback that caused it.
type Toasts struct {
	mu      sync.Mutex
	pending map[string]string
}

func NewToasts() *Toasts {
	return &Toasts{pending: make(map[string]string)}
}

func (t *Toasts) Notify(owner string, n services.Notification) {
	if _, ok := userFromOwner(owner); !ok {
		return
	}
	text := n.Message
	if n.ItemName != "" {
		text += ": " + n.ItemName
	}
	t.mu.Lock()
	t.pending[owner] = text
	t.mu.Unlock()
}

func (t *Toasts) Take(owner string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	text := t.pending[owner]
	delete(t.pending, owner)
	return text
}
