package domain

import "strings"

// AddressRecord is the bookkeeping of every address known by the wallet,
// grouped by the way their keys are stored.
type AddressRecord struct {
	WatchAddresses                    []string
	AddressesWithPrivateKeys          []string
	AddressesWithSeed                 []string
	AddressesProtectedByPresenceCheck []string
}

// NewAddressRecord returns an empty record with all lists initialized.
func NewAddressRecord() *AddressRecord {
	r := &AddressRecord{}
	r.Normalize()
	return r
}

// MigrateAddressRecord returns destination with its four address lists
// overwritten by copies of the source ones. Applying it more than once with
// the same source always yields the same record.
func MigrateAddressRecord(source, destination AddressRecord) AddressRecord {
	destination.WatchAddresses = copyAddresses(source.WatchAddresses)
	destination.AddressesWithPrivateKeys = copyAddresses(source.AddressesWithPrivateKeys)
	destination.AddressesWithSeed = copyAddresses(source.AddressesWithSeed)
	destination.AddressesProtectedByPresenceCheck = copyAddresses(
		source.AddressesProtectedByPresenceCheck,
	)
	return destination
}

// Normalize replaces nil lists with empty ones.
func (r *AddressRecord) Normalize() {
	if r.WatchAddresses == nil {
		r.WatchAddresses = []string{}
	}
	if r.AddressesWithPrivateKeys == nil {
		r.AddressesWithPrivateKeys = []string{}
	}
	if r.AddressesWithSeed == nil {
		r.AddressesWithSeed = []string{}
	}
	if r.AddressesProtectedByPresenceCheck == nil {
		r.AddressesProtectedByPresenceCheck = []string{}
	}
}

// WalletFor resolves the origin of the given address, matched regardless of
// its case. Seed addresses take precedence over private key ones, which take
// precedence over watch ones. The returned wallet carries the address as
// stored in the record.
func (r AddressRecord) WalletFor(address string) (Wallet, error) {
	if addr, ok := findAddress(r.AddressesWithSeed, address); ok {
		return Wallet{Address: addr, Origin: WalletOriginHD}, nil
	}
	if addr, ok := findAddress(r.AddressesWithPrivateKeys, address); ok {
		return Wallet{Address: addr, Origin: WalletOriginPrivateKey}, nil
	}
	if addr, ok := findAddress(r.WatchAddresses, address); ok {
		return Wallet{Address: addr, Origin: WalletOriginWatch}, nil
	}
	return Wallet{}, ErrWalletNotFound
}

// Wallets returns every wallet of the record.
func (r AddressRecord) Wallets() []Wallet {
	wallets := make([]Wallet, 0,
		len(r.AddressesWithSeed)+len(r.AddressesWithPrivateKeys)+len(r.WatchAddresses),
	)
	for _, addr := range r.AddressesWithSeed {
		wallets = append(wallets, Wallet{addr, WalletOriginHD})
	}
	for _, addr := range r.AddressesWithPrivateKeys {
		wallets = append(wallets, Wallet{addr, WalletOriginPrivateKey})
	}
	for _, addr := range r.WatchAddresses {
		wallets = append(wallets, Wallet{addr, WalletOriginWatch})
	}
	return wallets
}

// HasAddress returns whether the address is known with any origin.
func (r AddressRecord) HasAddress(address string) bool {
	_, err := r.WalletFor(address)
	return err == nil
}

// AddWatchAddress adds the address to the watch list.
func (r *AddressRecord) AddWatchAddress(address string) error {
	return r.add(&r.WatchAddresses, address)
}

// AddPrivateKeyAddress adds the address to the list of imported keys.
func (r *AddressRecord) AddPrivateKeyAddress(address string) error {
	return r.add(&r.AddressesWithPrivateKeys, address)
}

// AddSeedAddress adds the address to the list of seed derived ones.
func (r *AddressRecord) AddSeedAddress(address string) error {
	return r.add(&r.AddressesWithSeed, address)
}

// MarkProtectedByPresenceCheck flags the address as protected by the user
// presence lock. It's a no-op if the address is already protected.
func (r *AddressRecord) MarkProtectedByPresenceCheck(address string) error {
	wallet, err := r.WalletFor(address)
	if err != nil {
		return err
	}
	if r.IsProtectedByPresenceCheck(address) {
		return nil
	}
	r.AddressesProtectedByPresenceCheck = append(
		r.AddressesProtectedByPresenceCheck, wallet.Address,
	)
	return nil
}

// IsProtectedByPresenceCheck ...
func (r AddressRecord) IsProtectedByPresenceCheck(address string) bool {
	_, ok := findAddress(r.AddressesProtectedByPresenceCheck, address)
	return ok
}

func (r *AddressRecord) add(list *[]string, address string) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	if r.HasAddress(address) {
		return ErrWalletAlreadyExists
	}
	*list = append(*list, address)
	return nil
}

func findAddress(list []string, address string) (string, bool) {
	for _, a := range list {
		if strings.EqualFold(a, address) {
			return a, true
		}
	}
	return "", false
}

func copyAddresses(list []string) []string {
	cpy := make([]string, len(list))
	copy(cpy, list)
	return cpy
}
