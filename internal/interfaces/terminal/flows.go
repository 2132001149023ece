package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
)

const (
	DefaultSeedVerifyWords = 3

	revealSeedPrompt = "Enter your wallet password to reveal the seed phrase"
)

// FlowFactoryOpts ...
type FlowFactoryOpts struct {
	Terminal          *Terminal
	KeyManager        ports.KeyManager
	SeedVerifyWords   int
	MinPasswordLength int
}

func (o FlowFactoryOpts) validate() error {
	if o.Terminal == nil {
		return fmt.Errorf("missing terminal")
	}
	if o.KeyManager == nil {
		return fmt.Errorf("missing key manager")
	}
	if o.SeedVerifyWords < 0 {
		return fmt.Errorf("seed verify words must not be negative")
	}
	if o.MinPasswordLength < 0 {
		return fmt.Errorf("min password length must not be negative")
	}
	return nil
}

// FlowFactory creates the child flows of a backup as terminal dialogs.
// The context is used for the calls to the key manager made by the flows.
type FlowFactory struct {
	ctx               context.Context
	term              *Terminal
	keyManager        ports.KeyManager
	seedVerifyWords   int
	minPasswordLength int
	positions         func(total, count int) []int
}

func NewFlowFactory(ctx context.Context, opts FlowFactoryOpts) (*FlowFactory, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.SeedVerifyWords == 0 {
		opts.SeedVerifyWords = DefaultSeedVerifyWords
	}
	if opts.MinPasswordLength == 0 {
		opts.MinPasswordLength = domain.MinPasswordLength
	}

	return &FlowFactory{
		ctx:               ctx,
		term:              opts.Terminal,
		keyManager:        opts.KeyManager,
		seedVerifyWords:   opts.SeedVerifyWords,
		minPasswordLength: opts.MinPasswordLength,
		positions:         randomPositions,
	}, nil
}

func (f *FlowFactory) NewSeedPhraseFlow(
	address string, sink ports.FlowEventSink,
) ports.ChildFlow {
	return &seedPhraseFlow{
		flow:    newFlow(ports.FlowKindSeedPhrase, sink),
		factory: f,
		address: address,
	}
}

func (f *FlowFactory) NewPasswordEntryFlow(
	address string, sink ports.FlowEventSink,
) ports.ChildFlow {
	return &passwordFlow{
		flow:    newFlow(ports.FlowKindPasswordEntry, sink),
		factory: f,
		address: address,
		retry:   make(chan struct{}, 1),
	}
}

func (f *FlowFactory) NewSecurityElevationFlow(
	wallet domain.Wallet, sink ports.FlowEventSink,
) ports.ChildFlow {
	return &elevationFlow{
		flow:    newFlow(ports.FlowKindSecurityElevation, sink),
		factory: f,
		wallet:  wallet,
	}
}

// flow holds what is common to every terminal flow. Once ended or dismissed
// a flow stops reporting events, a prompt already waiting for input is not
// interrupted though.
type flow struct {
	kind ports.FlowKind
	sink ports.FlowEventSink

	once sync.Once
	done chan struct{}
}

func newFlow(kind ports.FlowKind, sink ports.FlowEventSink) *flow {
	return &flow{kind: kind, sink: sink, done: make(chan struct{})}
}

func (f *flow) Kind() ports.FlowKind {
	return f.kind
}

func (f *flow) End() {
	f.close()
}

func (f *flow) Dismiss() {
	f.close()
}

func (f *flow) close() {
	f.once.Do(func() { close(f.done) })
}

func (f *flow) closed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *flow) notify(event ports.FlowEvent) {
	if f.closed() {
		return
	}
	f.sink.Notify(event)
}

type seedPhraseFlow struct {
	*flow
	factory *FlowFactory
	address string
}

func (f *seedPhraseFlow) Start() {
	go f.run()
}

func (f *seedPhraseFlow) run() {
	term := f.factory.term
	cancelled := ports.FlowEvent{Kind: ports.SeedPhraseCancelled}

	words, ok := f.reveal()
	if !ok {
		f.notify(cancelled)
		return
	}

	term.prompt.Lock()
	defer term.prompt.Unlock()

	term.printf("\nWrite down the following words in order and keep them safe:\n\n")
	for i, w := range words {
		term.printf("%2d. %s\n", i+1, w)
	}
	term.printf("\n")

	if _, err := term.readLine("Press enter once you are done "); err != nil {
		f.notify(cancelled)
		return
	}

	term.printf("Verify your seed phrase (leave blank to cancel)\n")
	for _, i := range f.factory.positions(len(words), f.factory.seedVerifyWords) {
		for {
			if f.closed() {
				return
			}
			reply, err := term.readLine(fmt.Sprintf("Word #%d: ", i+1))
			if err != nil || reply == "" {
				f.notify(cancelled)
				return
			}
			if strings.EqualFold(reply, words[i]) {
				break
			}
			term.printf("Wrong word, try again\n")
		}
	}

	f.notify(ports.FlowEvent{Kind: ports.SeedPhraseVerified})
}

// reveal asks the key manager for the seed phrase, again after every wrong
// password. A blank password, the end of input or any other error stop the
// attempts.
func (f *seedPhraseFlow) reveal() ([]string, bool) {
	term := f.factory.term
	for {
		if f.closed() {
			return nil, false
		}
		words, err := f.factory.keyManager.ExportSeedPhrase(
			f.factory.ctx, f.address, revealSeedPrompt,
		)
		if err == nil {
			return words, true
		}
		if isAbort(err) {
			return nil, false
		}

		log.WithError(err).WithField("address", f.address).Debug(
			"failed to reveal seed phrase",
		)
		if !errors.Is(err, domain.ErrInvalidPassword) {
			term.printf("Failed to reveal seed phrase: %s\n", err)
			return nil, false
		}
		term.printf("Wrong password, try again (leave blank to cancel)\n")
	}
}

// isAbort tells whether err means the user or the caller gave up rather than
// a failed attempt.
func isAbort(err error) bool {
	return errors.Is(err, ErrNoInput) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

type passwordFlow struct {
	*flow
	factory *FlowFactory
	address string
	retry   chan struct{}
}

func (f *passwordFlow) Start() {
	f.factory.term.setActivePassword(f)
	go f.run()
}

func (f *passwordFlow) resume() {
	select {
	case f.retry <- struct{}{}:
	default:
	}
}

// run asks for the password that protects the exported key. After a
// password is reported, it waits to be resumed (the export failed) or closed.
func (f *passwordFlow) run() {
	term := f.factory.term
	defer term.clearActivePassword(f)

	for {
		password, ok := f.askPassword()
		if !ok {
			f.notify(ports.FlowEvent{Kind: ports.PasswordCancelled})
			return
		}
		f.notify(ports.FlowEvent{Kind: ports.PasswordEntered, Password: password})

		select {
		case <-f.retry:
		case <-f.done:
			return
		}
	}
}

func (f *passwordFlow) askPassword() (string, bool) {
	term := f.factory.term
	term.prompt.Lock()
	defer term.prompt.Unlock()

	term.printf(
		"Choose a password to encrypt the backup of %s (leave blank to cancel)\n",
		f.address,
	)
	for {
		if f.closed() {
			return "", false
		}
		password, err := term.readSecret("New password: ")
		if err != nil || password == "" {
			return "", false
		}
		if len(password) < f.factory.minPasswordLength {
			term.printf(
				"Password must be at least %d characters long\n",
				f.factory.minPasswordLength,
			)
			continue
		}

		confirm, err := term.readSecret("Confirm password: ")
		if err != nil || confirm == "" {
			return "", false
		}
		if confirm != password {
			term.printf("Passwords do not match\n")
			continue
		}
		return password, true
	}
}

type elevationFlow struct {
	*flow
	factory *FlowFactory
	wallet  domain.Wallet
}

func (f *elevationFlow) Start() {
	go f.run()
}

func (f *elevationFlow) run() {
	term := f.factory.term

	term.prompt.Lock()
	lock, err := term.confirm(
		"Require user presence to access this account from now on?",
	)
	term.prompt.Unlock()
	if err != nil || !lock {
		f.notify(ports.FlowEvent{Kind: ports.SecurityDeclined})
		return
	}

	if err := f.factory.keyManager.ElevateSecurity(
		f.factory.ctx, f.wallet.Address,
	); err != nil {
		term.printf("Failed to enable user presence lock: %s\n", err)
		f.notify(ports.FlowEvent{Kind: ports.SecurityDeclined})
		return
	}
	f.notify(ports.FlowEvent{Kind: ports.SecurityLocked})
}

// randomPositions returns count distinct sorted indexes in [0, total).
func randomPositions(total, count int) []int {
	if count > total {
		count = total
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	positions := r.Perm(total)[:count]
	sort.Ints(positions)
	return positions
}
