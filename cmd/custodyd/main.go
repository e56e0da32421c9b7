package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/custody"
	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/commands"
	"github.com/iov-one/custody/commands/server"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome = "home"
	varHome  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".custody")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("custodyd")
	fmt.Println("          Conditional custody (escrow) node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("validate  Check that genesis files initialize the app")
	fmt.Println("getblock  Extract a block from blockchain.db")
	fmt.Println("retry     Replay a block.json on <home>/abci.db and compare app hashes")
	fmt.Println("testgen   Write example encodings for client libraries")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.custody")`)
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "custody")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(custodyd.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(custodyd.GenerateApp, logger, *varHome, rest)
	case "validate":
		err = server.ValidateCmd(custodyd.Initializers(), rest)
	case "getblock":
		err = server.GetBlockCmd(rest)
	case "retry":
		err = server.RetryCmd(custodyd.InlineApp, logger, *varHome, rest)
	case "testgen":
		err = commands.TestGenCmd(custodyd.Examples(), rest)
	case "version":
		fmt.Println(custody.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
