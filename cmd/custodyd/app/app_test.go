package custodyd

import (
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/commands"
	"github.com/iov-one/custody/commands/server"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/escrow"
	"github.com/iov-one/custody/x/sigs"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	chainID = "custody-test-chain"

	makerNative    = 10000
	makerTokens    = 5000
	receiverNative = 1000
	// receiver pays the reserve of its new token account
	receiverReserve = DefaultAccountOverhead + cash.AccountSpace
)

type testApp struct {
	t      *testing.T
	app    abci.Application
	height int64
	nonces map[string]int64
}

func newTestApp(t *testing.T, maker, receiver custody.Address) *testApp {
	t.Helper()
	appState, err := json.Marshal(map[string]interface{}{
		"cash": []cash.GenesisAccount{
			{Address: maker, Balance: coin.NewCoin(makerNative, "IOV")},
			{Owner: maker, Balance: coin.NewCoin(makerTokens, "ETH")},
			{Address: receiver, Balance: coin.NewCoin(receiverNative, "IOV")},
		},
		"conf": map[string]interface{}{
			"cash": cash.Configuration{
				Metadata:        &custody.Metadata{Schema: 1},
				NativeTicker:    "IOV",
				ReservePerByte:  DefaultReservePerByte,
				AccountOverhead: DefaultAccountOverhead,
			},
		},
	})
	require.NoError(t, err)

	a, err := GenerateApp(&server.Options{
		Logger:   log.NewNopLogger(),
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	a.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: appState})
	return &testApp{t: t, app: a, nonces: make(map[string]int64)}
}

// signedTx wraps the message into a Tx signed by the given key, using and
// incrementing its local sequence.
func (a *testApp) signedTx(key *crypto.PrivateKey, tx *Tx) []byte {
	a.t.Helper()
	addr := key.PublicKey().Address().String()
	sig, err := sigs.SignTx(key, tx, chainID, a.nonces[addr])
	require.NoError(a.t, err)
	a.nonces[addr]++
	tx.Signatures = []*sigs.StdSignature{sig}
	bz, err := tx.Marshal()
	require.NoError(a.t, err)
	return bz
}

// block runs the given transactions in a single block and commits it.
func (a *testApp) block(txs ...[]byte) []abci.ResponseDeliverTx {
	a.t.Helper()
	a.height++
	a.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{ChainID: chainID, Height: a.height}})
	res := make([]abci.ResponseDeliverTx, len(txs))
	for i, tx := range txs {
		chres := a.app.CheckTx(tx)
		res[i] = a.app.DeliverTx(tx)
		assert.Equal(a.t, chres.Code, res[i].Code, "check and deliver disagree: %s / %s", chres.Log, res[i].Log)
	}
	a.app.EndBlock(abci.RequestEndBlock{Height: a.height})
	a.app.Commit()
	return res
}

func (a *testApp) query(path string, key []byte, obj custody.Persistent) error {
	a.t.Helper()
	res := a.app.Query(abci.RequestQuery{Path: path, Data: key})
	require.Equal(a.t, uint32(0), res.Code, res.Log)
	return app.UnmarshalOneResult(res.Value, obj)
}

func (a *testApp) balance(owner custody.Address, ticker string) uint64 {
	a.t.Helper()
	addr := owner
	if ticker != "IOV" {
		var err error
		addr, _, err = cash.AssociatedAddress(owner, ticker)
		require.NoError(a.t, err)
	}
	var acc cash.Account
	switch err := a.query("/accounts", addr, &acc); {
	case errors.ErrNotFound.Is(err):
		return 0
	default:
		require.NoError(a.t, err)
	}
	return acc.Balance.Amount
}

func meta() *custody.Metadata {
	return &custody.Metadata{Schema: 1}
}

func TestEscrowRelease(t *testing.T) {
	makerKey := crypto.GenPrivKeyEd25519()
	receiverKey := crypto.GenPrivKeyEd25519()
	maker := makerKey.PublicKey().Address()
	receiver := receiverKey.PublicKey().Address()

	a := newTestApp(t, maker, receiver)
	assert.Equal(t, uint64(makerTokens), a.balance(maker, "ETH"))

	res := a.block(a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowMakeMsg{&escrow.MakeMsg{
		Metadata: meta(),
		Mint:     "ETH",
		Seed:     7,
		Amount:   300,
	}}}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	wantID, _, err := escrow.RecordAddress(maker, 7)
	require.NoError(t, err)
	escrowID := custody.Address(res[0].Data)
	assert.Equal(t, wantID, escrowID)

	var e escrow.Escrow
	require.NoError(t, a.query("/escrows", escrowID, &e))
	assert.Equal(t, maker, e.Maker)
	assert.Nil(t, e.Receiver)
	assert.Equal(t, uint64(300), e.Amount)
	// the maker paid the storage reserves in native tokens
	assert.True(t, a.balance(maker, "IOV") < makerNative)

	res = a.block(
		a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowDepositMsg{&escrow.DepositMsg{
			Metadata: meta(),
			EscrowID: escrowID,
			Amount:   200,
		}}}),
		a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowDepositMsg{&escrow.DepositMsg{
			Metadata: meta(),
			EscrowID: escrowID,
			Amount:   100,
		}}}),
		a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowSetReceiverMsg{&escrow.SetReceiverMsg{
			Metadata: meta(),
			EscrowID: escrowID,
			Receiver: receiver,
		}}}),
	)
	for _, r := range res {
		require.Equal(t, uint32(0), r.Code, r.Log)
	}
	assert.Equal(t, uint64(makerTokens-300), a.balance(maker, "ETH"))
	vault, err := escrow.VaultAddress(escrowID, "ETH")
	require.NoError(t, err)
	var vaultAcc cash.Account
	require.NoError(t, a.query("/accounts", vault, &vaultAcc))
	assert.Equal(t, uint64(300), vaultAcc.Balance.Amount)

	// the receiver can be bound only once
	res = a.block(a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowSetReceiverMsg{&escrow.SetReceiverMsg{
		Metadata: meta(),
		EscrowID: escrowID,
		Receiver: maker,
	}}}))
	assert.Equal(t, escrow.ErrAlreadyBound.ABCICode(), res[0].Code)

	// only the receiver may release
	res = a.block(a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowReleaseMsg{&escrow.ReleaseMsg{
		Metadata: meta(),
		EscrowID: escrowID,
	}}}))
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res[0].Code)

	res = a.block(a.signedTx(receiverKey, &Tx{Sum: &Tx_EscrowReleaseMsg{&escrow.ReleaseMsg{
		Metadata: meta(),
		EscrowID: escrowID,
	}}}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	assert.Equal(t, uint64(300), a.balance(receiver, "ETH"))
	assert.Equal(t, uint64(receiverNative-receiverReserve), a.balance(receiver, "IOV"))
	// all reserves are back with the maker
	assert.Equal(t, uint64(makerNative), a.balance(maker, "IOV"))

	err = a.query("/escrows", escrowID, &e)
	assert.True(t, errors.ErrNotFound.Is(err))
	err = a.query("/accounts", vault, &vaultAcc)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestEscrowRefund(t *testing.T) {
	makerKey := crypto.GenPrivKeyEd25519()
	receiverKey := crypto.GenPrivKeyEd25519()
	maker := makerKey.PublicKey().Address()
	receiver := receiverKey.PublicKey().Address()
	a := newTestApp(t, maker, receiver)

	res := a.block(a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowMakeMsg{&escrow.MakeMsg{
		Metadata: meta(),
		Mint:     "ETH",
		Seed:     1,
		Amount:   50,
	}}}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	escrowID := custody.Address(res[0].Data)

	res = a.block(
		a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowDepositMsg{&escrow.DepositMsg{
			Metadata: meta(),
			EscrowID: escrowID,
			Amount:   50,
		}}}),
		// the same seed cannot be used twice
		a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowMakeMsg{&escrow.MakeMsg{
			Metadata: meta(),
			Mint:     "ETH",
			Seed:     1,
			Amount:   10,
		}}}),
		// only the maker can refund
		a.signedTx(receiverKey, &Tx{Sum: &Tx_EscrowRefundMsg{&escrow.RefundMsg{
			Metadata: meta(),
			EscrowID: escrowID,
		}}}),
	)
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	assert.Equal(t, errors.ErrDuplicate.ABCICode(), res[1].Code)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res[2].Code)
	assert.Equal(t, uint64(makerTokens-50), a.balance(maker, "ETH"))

	res = a.block(a.signedTx(makerKey, &Tx{Sum: &Tx_EscrowRefundMsg{&escrow.RefundMsg{
		Metadata: meta(),
		EscrowID: escrowID,
	}}}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	assert.Equal(t, uint64(makerTokens), a.balance(maker, "ETH"))
	assert.Equal(t, uint64(makerNative), a.balance(maker, "IOV"))
}

func TestCashSend(t *testing.T) {
	senderKey := crypto.GenPrivKeyEd25519()
	sender := senderKey.PublicKey().Address()
	other := crypto.GenPrivKeyEd25519().PublicKey().Address()
	a := newTestApp(t, sender, other)

	amount := coin.NewCoin(250, "IOV")
	res := a.block(a.signedTx(senderKey, &Tx{Sum: &Tx_CashSendMsg{&cash.SendMsg{
		Metadata:    meta(),
		Source:      sender,
		Destination: other,
		Amount:      &amount,
	}}}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	assert.Equal(t, uint64(makerNative-250), a.balance(sender, "IOV"))
	assert.Equal(t, uint64(receiverNative+250), a.balance(other, "IOV"))

	// the nonce was bumped
	var user sigs.UserData
	require.NoError(t, a.query("/auth", sender, &user))
	assert.Equal(t, int64(1), user.Sequence)
}

func TestUnsignedTxIsRejected(t *testing.T) {
	maker := crypto.GenPrivKeyEd25519().PublicKey().Address()
	a := newTestApp(t, maker, crypto.GenPrivKeyEd25519().PublicKey().Address())

	tx := &Tx{Sum: &Tx_EscrowMakeMsg{&escrow.MakeMsg{
		Metadata: meta(),
		Maker:    maker,
		Mint:     "ETH",
		Seed:     1,
		Amount:   10,
	}}}
	bz, err := tx.Marshal()
	require.NoError(t, err)
	res := a.app.CheckTx(bz)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res.Code)

	res = a.app.CheckTx([]byte("not a transaction"))
	assert.NotEqual(t, uint32(0), res.Code)
}

func TestGenInitOptions(t *testing.T) {
	addr := crypto.GenPrivKeyEd25519().PublicKey().Address()
	cases := map[string]struct {
		args    []string
		wantErr *errors.Error
		ticker  string
	}{
		"defaults": {
			ticker: DefaultTicker,
		},
		"custom ticker and address": {
			args:   []string{"ETH", addr.String()},
			ticker: "ETH",
		},
		"condition address": {
			args:   []string{"IOV", "cond:sigs/ed25519/0102AB"},
			ticker: "IOV",
		},
		"invalid ticker": {
			args:    []string{"e"},
			wantErr: errors.ErrCurrency,
		},
		"invalid address": {
			args:    []string{"ETH", "nothex"},
			wantErr: errors.ErrInvalidInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := GenInitOptions(tc.args)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}

			// the generated state must initialize the application
			var opts custody.Options
			require.NoError(t, json.Unmarshal(raw, &opts))
			require.NoError(t, Initializers().FromGenesis(opts, store.MemStore()))
			var accts []cash.GenesisAccount
			require.NoError(t, opts.ReadOptions("cash", &accts))
			require.Len(t, accts, 1)
			assert.Equal(t, tc.ticker, accts[0].Balance.Ticker)
			if len(tc.args) > 1 {
				assert.Equal(t, addr, accts[0].Address)
			}
		})
	}
}

func TestExamplesRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "custody-testgen")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	examples := Examples()
	require.NoError(t, commands.TestGenCmd(examples, []string{dir}))

	for _, ex := range examples {
		pb, err := ioutil.ReadFile(filepath.Join(dir, ex.Filename+".bin"))
		require.NoError(t, err)
		want, err := ex.Obj.Marshal()
		require.NoError(t, err)
		assert.Equal(t, want, pb, ex.Filename)
		_, err = os.Stat(filepath.Join(dir, ex.Filename+".json"))
		require.NoError(t, err)
	}

	// the signed example is accepted by the decoder
	raw, err := ioutil.ReadFile(filepath.Join(dir, "signed_tx.bin"))
	require.NoError(t, err)
	tx, err := TxDecoder(raw)
	require.NoError(t, err)
	msg, err := tx.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, "escrow/make", msg.Path())
	assert.Len(t, tx.(*Tx).GetSignatures(), 1)
}

func TestGenerateCoinKey(t *testing.T) {
	addr, secret, err := GenerateCoinKey()
	require.NoError(t, err)
	require.NoError(t, addr.Validate())

	// the secret recovers the key
	seed, err := hex.DecodeString(secret)
	require.NoError(t, err)
	key, err := crypto.DerivePrivKeyEd25519(seed, crypto.DefaultDerivationPath)
	require.NoError(t, err)
	assert.Equal(t, addr, key.PublicKey().Address())
}

func TestConfigurationQuery(t *testing.T) {
	a := newTestApp(t,
		crypto.GenPrivKeyEd25519().PublicKey().Address(),
		crypto.GenPrivKeyEd25519().PublicKey().Address())

	var conf cash.Configuration
	require.NoError(t, a.query("/config", []byte("cash"), &conf))
	assert.Equal(t, "IOV", conf.NativeTicker)

	// escrow runs on defaults without a genesis configuration
	var escrowConf escrow.Configuration
	err := a.query("/config", []byte("escrow"), &escrowConf)
	assert.True(t, errors.ErrNotFound.Is(err))
}
