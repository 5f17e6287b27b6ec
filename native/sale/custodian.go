package sale

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Ledger is the external fungible-asset service the engine moves balances
// through. Transfer debits from and credits to atomically; the ledger
// rejects transfers whose authorizing identity does not control the source
// account. BalanceOf reports the balance held by an account for one asset.
type Ledger interface {
	Transfer(from, to, authority [20]byte, asset string, amount uint64) error
	BalanceOf(account [20]byte, asset string) (uint64, error)
}

// VaultAuthority is the derived custody credential for one campaign. It is
// bound 1:1 to the sale identifier and is the only identity able to
// authorize transfers out of the campaign vaults. There is no key material
// behind it; the engine is the sole holder of the capability.
type VaultAuthority struct {
	address [20]byte
}

// DeriveVaultAuthority derives the custody authority for a campaign.
func DeriveVaultAuthority(saleID [32]byte) VaultAuthority {
	digest := ethcrypto.Keccak256Hash([]byte("sale/vault/"), saleID[:])
	var addr [20]byte
	copy(addr[:], digest[12:])
	return VaultAuthority{address: addr}
}

// Address returns the ledger account address controlled by the authority.
// Both campaign vaults live at this address, one balance per asset.
func (a VaultAuthority) Address() [20]byte { return a.address }

// Custodian orchestrates fund movement through the ledger under the derived
// custody authority. Releases re-validate the vault balance first: the
// engine never assumes it exclusively controls vault balances.
type Custodian struct {
	ledger    Ledger
	authority VaultAuthority
}

// NewCustodian binds a custodian to one campaign's vaults.
func NewCustodian(ledger Ledger, saleID [32]byte) *Custodian {
	return &Custodian{ledger: ledger, authority: DeriveVaultAuthority(saleID)}
}

// Authority exposes the custody credential, primarily so hosts can
// provision vault accounts.
func (c *Custodian) Authority() VaultAuthority { return c.authority }

// Collect pulls a payment from the participant into the campaign vault. The
// participant's own identity authorizes the debit.
func (c *Custodian) Collect(from [20]byte, asset string, amount uint64) error {
	return c.ledger.Transfer(from, c.authority.address, from, asset, amount)
}

// Release pays out of the campaign vault after re-checking that the vault
// actually holds the requested amount.
func (c *Custodian) Release(to [20]byte, asset string, amount uint64) error {
	balance, err := c.ledger.BalanceOf(c.authority.address, asset)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientVaultBalance
	}
	return c.ledger.Transfer(c.authority.address, to, c.authority.address, asset, amount)
}

// VaultBalance reports the vault's current holdings of one asset.
func (c *Custodian) VaultBalance(asset string) (uint64, error) {
	return c.ledger.BalanceOf(c.authority.address, asset)
}
