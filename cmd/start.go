package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kivisql/kivi/parser"
	"github.com/kivisql/kivi/repl"
	"github.com/kivisql/kivi/server"
	"github.com/kivisql/kivi/storage/keyval"
	"github.com/kivisql/kivi/store"
)

var (
	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the Kivi database server",
		RunE:  startRun,
	}

	storeName = "memory"
	dataDir   = "testdata"

	proto3Host     = "localhost"
	proto3Port     = "5432"
	sshServer      = false
	sshPort        = "localhost:8241"
	authorizedKeys = ""
	hostKeys       = []string{"id_rsa"}

	sqlArgs = []string{}
)

func initServerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&storeName, "store", storeName, "storage backend to use")
	cfgVars["store"] = fs.Lookup("store")

	fs.StringVar(&dataDir, "data", dataDir, "`directory` containing data files")
	cfgVars["data"] = fs.Lookup("data")

	fs.StringSliceVar(&sqlArgs, "sql", sqlArgs, "sql `statements` to execute; multiple allowed")
}

func init() {
	fs := startCmd.Flags()
	initServerFlags(fs)

	fs.StringVar(&proto3Host, "host", proto3Host,
		"`host` used to serve PostgreSQL wire protocol v3")
	cfgVars["host"] = fs.Lookup("host")

	fs.StringVarP(&proto3Port, "port", "p", proto3Port,
		"`port` used to serve PostgreSQL wire protocol v3")
	cfgVars["port"] = fs.Lookup("port")

	fs.BoolVar(&sshServer, "ssh", sshServer, "`flag` to control serving SSH")
	cfgVars["ssh"] = fs.Lookup("ssh")

	fs.StringVar(&sshPort, "ssh-port", sshPort, "`port` used to serve SSH")
	cfgVars["ssh-port"] = fs.Lookup("ssh-port")

	fs.StringVar(&authorizedKeys, "ssh-authorized-keys", authorizedKeys,
		"`file` containing authorized ssh keys")
	cfgVars["ssh-authorized-keys"] = fs.Lookup("ssh-authorized-keys")

	fs.StringSliceVar(&hostKeys, "ssh-host-key", hostKeys,
		"`file` containing a ssh host key; multiple allowed")
	cfgVars["ssh-host-keys"] = fs.Lookup("ssh-host-key")

	cfgVars["accounts"] = nil

	kiviCmd.AddCommand(startCmd)
}

func newStore() (store.Store[uint64], error) {
	switch storeName {
	case "memory":
		return keyval.NewBTreeStore()
	case "bbolt":
		return keyval.NewBBoltStore(dataDir)
	case "badger":
		return keyval.NewBadgerStore(dataDir, log.StandardLogger())
	case "pebble":
		return keyval.NewPebbleStore(dataDir, log.StandardLogger())
	}
	return nil, fmt.Errorf("kivi: got %s for store; want memory, bbolt, badger, or pebble",
		storeName)
}

func newServer(args []string) (*server.Server[uint64], error) {
	st, err := newStore()
	if err != nil {
		return nil, fmt.Errorf("kivi: %s", err)
	}

	svr := &server.Server[uint64]{
		Store: st,
		Handler: server.HandlerFunc(func(c *server.Client) {
			src := fmt.Sprintf("%s@%s", c.User, c.Type)
			if c.Addr != "" {
				src = fmt.Sprintf("%s:%s", src, c.Addr)
			}
			repl.SQL(st, parser.NewParser(c.RuneReader, src), c.Writer)
		}),
	}

	for idx, arg := range sqlArgs {
		repl.SQL(st, parser.NewParser(strings.NewReader(arg), "sql-arg "+strconv.Itoa(idx)),
			os.Stdout)
	}

	for _, fn := range args {
		f, err := os.Open(fn)
		if err != nil {
			return nil, fmt.Errorf("kivi: sql file: %s", err)
		}
		repl.SQL(st, parser.NewParser(bufio.NewReader(f), fn), os.Stderr)
		f.Close()
	}

	return svr, nil
}

func userAccounts() map[string]string {
	val := cfg["accounts"]
	if val == nil {
		return nil
	}
	slice, ok := val.([]interface{})
	if !ok {
		return nil
	}

	userPasswords := map[string]string{}
	for _, obj := range slice {
		account, ok := obj.(map[string]interface{})
		if !ok {
			return nil
		}
		user, ok := account["user"].(string)
		if !ok {
			return nil
		}
		password, ok := account["password"].(string)
		if !ok {
			return nil
		}
		userPasswords[user] = password
	}

	return userPasswords
}

func startRun(cmd *cobra.Command, args []string) error {
	svr, err := newServer(args)
	if err != nil {
		return err
	}

	p3Cfg := server.Proto3Config{
		Address: fmt.Sprintf("%s:%s", proto3Host, proto3Port),
	}

	go func() {
		fmt.Fprintf(os.Stderr, "kivi: %s\n", svr.ListenAndServeProto3(p3Cfg))
	}()

	if sshServer {
		userPasswords := userAccounts()

		sshCfg := server.SSHConfig{
			Address: sshPort,
		}

		for _, hostKey := range hostKeys {
			keyBytes, err := ioutil.ReadFile(hostKey)
			if err != nil {
				return fmt.Errorf("kivi: host keys: %s", err)
			}
			sshCfg.HostKeysBytes = append(sshCfg.HostKeysBytes, keyBytes)
		}

		if authorizedKeys != "" {
			sshCfg.AuthorizedBytes, err = ioutil.ReadFile(authorizedKeys)
			if err != nil {
				return fmt.Errorf("kivi: authorized keys: %s", err)
			}
		}

		if len(userPasswords) > 0 {
			sshCfg.CheckPassword = func(user, password string) error {
				pw, ok := userPasswords[user]
				if !ok {
					return fmt.Errorf("user %s not found", user)
				}
				if password != pw {
					return fmt.Errorf("bad password for user %s", user)
				}
				return nil
			}
		}

		go func() {
			fmt.Fprintf(os.Stderr, "kivi: %s\n", svr.ListenAndServeSSH(sshCfg))
		}()
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	fmt.Println("kivi: waiting for ^C to shutdown")
	<-ch
	go func() {
		<-ch
		os.Exit(0)
	}()

	fmt.Println("kivi: shutting down")
	svr.Shutdown(context.Background())

	return nil
}
