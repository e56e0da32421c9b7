/*
Package escrow implements two-party conditional custody.

A maker creates an escrow for an asset and a seed of their choice. The
escrow record is stored under an address derived from (maker, seed), and
the escrowed funds are held in a vault, the associated ledger account of
that address. Nobody holds a key for either address, so only this
extension can move the vault funds. The vault is opened as a ledger vault,
so it is credited by deposit alone and never by a plain send.

	make        creates the record and the empty vault, maker pays the reserves
	deposit     moves maker funds into the vault, repeatable
	setReceiver binds the receiver, exactly once
	release     receiver claims the whole vault, record and vault are closed
	refund      maker takes the vault back, record and vault are closed

Closing returns both storage reserves to the maker. The same (maker, seed)
can be used again afterwards.

Every handler re-derives the record address from the stored maker, seed
and bump before acting on it.
*/
package escrow
