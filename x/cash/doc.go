/*
Package cash is the asset ledger. It holds a single asset balance per
account.

Native accounts are stored under the address of their holder and are
created the first time they are credited. They carry the native asset
used to pay storage reserves.

Associated accounts hold any asset on behalf of an owner. Their address is
derived from (owner, ticker), so nobody needs to store it. The owner can
be a program address, in which case only that program can move the funds.
Opening an associated account takes a storage reserve from the payer, and
closing it refunds that reserve.
*/
package cash
