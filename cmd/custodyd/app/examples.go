package custodyd

import (
	"encoding/hex"
	"strings"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/commands"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/escrow"
	"github.com/iov-one/custody/x/sigs"
)

// we fix the private keys here for deterministic output with the same encoding
// these are not secure at all, but the only point is to check the format,
// which is easier when everything is reproduceable.
var (
	maker    = makePrivKey("1234567890")
	receiver = makePrivKey("F00BA411").PublicKey().Address()
)

// makePrivKey repeats the string as long as needed to get 64 digits, then
// parses it as hex. It uses this repeated string as a "random" seed
// for the private key.
func makePrivKey(seed string) *crypto.PrivateKey {
	rep := 64/len(seed) + 1
	in := strings.Repeat(seed, rep)[:64]
	bin, err := hex.DecodeString(in)
	if err != nil {
		panic(err)
	}
	return crypto.PrivKeyEd25519FromSeed(bin)
}

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	meta := &custody.Metadata{Schema: 1}
	pub := maker.PublicKey()
	addr := pub.Address()

	escrowID, bump, err := escrow.RecordAddress(addr, 1)
	if err != nil {
		panic(err)
	}
	vault, err := escrow.VaultAddress(escrowID, "ETH")
	if err != nil {
		panic(err)
	}

	eth := coin.NewCoin(50000, "ETH")
	reserve := coin.NewCoin(224, "IOV")

	account := &cash.Account{
		Metadata: meta,
		Owner:    escrowID,
		Balance:  &eth,
		Reserve:  &reserve,
	}
	record := &escrow.Escrow{
		Metadata: meta,
		Maker:    addr,
		Receiver: receiver,
		Mint:     "ETH",
		Seed:     1,
		Amount:   50000,
		Bump:     uint32(bump),
		Reserve:  &reserve,
	}
	user := &sigs.UserData{
		Metadata: meta,
		Pubkey:   pub,
		Sequence: 17,
	}

	makeMsg := &escrow.MakeMsg{Metadata: meta, Maker: addr, Mint: "ETH", Seed: 1, Amount: 50000}
	depositMsg := &escrow.DepositMsg{Metadata: meta, EscrowID: escrowID, Amount: 50000}
	receiverMsg := &escrow.SetReceiverMsg{Metadata: meta, EscrowID: escrowID, Receiver: receiver}
	releaseMsg := &escrow.ReleaseMsg{Metadata: meta, EscrowID: escrowID}
	sendMsg := &cash.SendMsg{Metadata: meta, Source: addr, Destination: vault, Amount: &eth, Memo: "deposit"}

	unsigned := &Tx{Sum: &Tx_EscrowMakeMsg{makeMsg}}
	signed := &Tx{Sum: &Tx_EscrowMakeMsg{makeMsg}}
	sig, err := sigs.SignTx(maker, signed, "test-123", 17)
	if err != nil {
		panic(err)
	}
	signed.Signatures = []*sigs.StdSignature{sig}

	return []commands.Example{
		{Filename: "pub_key", Obj: pub},
		{Filename: "priv_key", Obj: maker},
		{Filename: "account", Obj: account},
		{Filename: "escrow", Obj: record},
		{Filename: "user", Obj: user},
		{Filename: "make_msg", Obj: makeMsg},
		{Filename: "deposit_msg", Obj: depositMsg},
		{Filename: "set_receiver_msg", Obj: receiverMsg},
		{Filename: "release_msg", Obj: releaseMsg},
		{Filename: "send_msg", Obj: sendMsg},
		{Filename: "unsigned_tx", Obj: unsigned},
		{Filename: "signed_tx", Obj: signed},
	}
}
