// Command party2 runs the commit-and-open-first side of the two-party
// ECDSA engine: it dials party1, drives key-generation and signing over
// that single connection, and persists the resulting key store to disk.
// See cmd/party1 for the other half.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"io"
	"io/ioutil"
	"math/big"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/tokenized/config"

	"github.com/tokenized/cl-ecdsa/curve"
	"github.com/tokenized/cl-ecdsa/homomorphic"
	"github.com/tokenized/cl-ecdsa/logger"
	"github.com/tokenized/cl-ecdsa/tecdsa"
	"github.com/tokenized/cl-ecdsa/threads"
)

// Config is the CLI's configuration, loaded with config.LoadConfig the
// same way merchant_api/cmd and txbuilder/cmd load theirs.
type Config struct {
	PeerAddress  string `envconfig:"PEER_ADDRESS" json:"peer_address"`
	KeyStorePath string `default:"./party2.keystore.json" envconfig:"KEY_STORE_PATH" json:"key_store_path"`
	MessagePath  string `envconfig:"MESSAGE_PATH" json:"message_path"`
}

func main() {
	ctx := logger.ContextWithLogger(context.Background(), true, true, "")

	cfg := &Config{}
	if err := config.LoadConfig(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Failed to load config : %s", err)
	}

	logger.Info(ctx, "Connecting to party1 on %s", cfg.PeerAddress)

	conn, err := net.Dial("tcp", cfg.PeerAddress)
	if err != nil {
		logger.Fatal(ctx, "Failed to connect to %s : %s", cfg.PeerAddress, err)
	}
	defer conn.Close()

	signals := watchSignals(ctx, conn)
	defer signals.Stop(ctx)

	logger.Info(ctx, "Connected to party1")

	if err := run(ctx, conn, cfg); err != nil {
		logger.Fatal(ctx, "Protocol failed : %s", err)
	}

	logger.Info(ctx, "Finished successfully")
}

// watchSignals starts a background thread, in the teacher's threads idiom,
// that closes conn the moment an interrupt or termination signal arrives
// so a blocked Read/Write in the main goroutine unblocks with an error
// instead of the process hanging past Ctrl-C.
func watchSignals(ctx context.Context, conn net.Conn) threads.Threads {
	signalThread := threads.NewStopThread("Signals", func(ctx context.Context, stop *threads.AtomicFlag) error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		for {
			select {
			case <-sigCh:
				logger.Warn(ctx, "Signal received, closing connection")
				conn.Close()
				return nil

			case <-time.After(100 * time.Millisecond):
				if stop.IsSet() {
					return nil
				}
			}
		}
	})

	result := threads.Threads{signalThread}
	result.Start(ctx)
	return result
}

// run drives the full protocol over conn: key-generation if no key store
// exists yet, and signing if a message was provided. Both sides build
// the same Paillier cipher independently from the public secp256k1
// order, so there is no session-setup exchange to read first.
func run(ctx context.Context, conn net.Conn, cfg *Config) error {
	cipher := homomorphic.NewPaillier(curve.Order())

	keys, err := loadOrCreateKeyStore(ctx, conn, cfg.KeyStorePath)
	if err != nil {
		return errors.Wrap(err, "key store")
	}

	if cfg.MessagePath == "" {
		return nil
	}

	digest, err := messageDigest(cfg.MessagePath)
	if err != nil {
		return errors.Wrap(err, "message digest")
	}

	if err := sign(ctx, conn, cipher, keys, digest); err != nil {
		return errors.Wrap(err, "sign")
	}

	logger.Info(ctx, "Signing finished")
	return nil
}

func loadOrCreateKeyStore(ctx context.Context, conn net.Conn, path string) (tecdsa.KeyStore, error) {
	if data, err := ioutil.ReadFile(path); err == nil {
		var keys tecdsa.KeyStore
		if err := json.Unmarshal(data, &keys); err != nil {
			return tecdsa.KeyStore{}, errors.Wrap(err, "unmarshal key store")
		}
		logger.Info(ctx, "Loaded existing key store from %s", path)
		return keys, nil
	}

	logger.Info(ctx, "Running key-generation")

	p2, round1, err := tecdsa.NewKeyGenParty2(ctx)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "new key-gen party two")
	}

	round1Bytes, err := round1.Encode()
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "encode key-gen round 1")
	}
	if err := writeFrame(conn, round1Bytes); err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "send key-gen round 1")
	}

	commitBytes, err := readFrame(conn)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "read key-gen commitment")
	}
	commit, err := tecdsa.DecodeKeyGenRound1Message(commitBytes)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "decode key-gen commitment")
	}

	if err := p2.HandleCommitment(ctx, commit); err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "handle commitment")
	}

	openBytes, err := readFrame(conn)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "read key-gen open")
	}
	open, err := tecdsa.DecodeKeyGenRound2Message(openBytes)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "decode key-gen open")
	}

	finish, err := p2.HandleOpen(ctx, open)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "handle open")
	}

	finishBytes, err := finish.Encode()
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "encode key-gen finish")
	}
	if err := writeFrame(conn, finishBytes); err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "send key-gen finish")
	}

	keys, err := p2.KeyStore()
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "key store")
	}

	keyJSON, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "marshal key store")
	}
	if err := ioutil.WriteFile(path, keyJSON, 0600); err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "write key store")
	}

	logger.Info(ctx, "Wrote key store to %s", path)
	return keys, nil
}

func sign(ctx context.Context, conn net.Conn, cipher homomorphic.Cipher, keys tecdsa.KeyStore,
	digest [32]byte) error {

	m := curve.Mod(new(big.Int).SetBytes(digest[:]))

	p2, nonceCom, err := tecdsa.NewSignParty2(ctx, cipher, keys, m)
	if err != nil {
		return errors.Wrap(err, "new sign party two")
	}

	nonceComBytes, err := nonceCom.Encode()
	if err != nil {
		return errors.Wrap(err, "encode nonce commit")
	}
	if err := writeFrame(conn, nonceComBytes); err != nil {
		return errors.Wrap(err, "send nonce commit")
	}

	mtaRound1Bytes, err := readFrame(conn)
	if err != nil {
		return errors.Wrap(err, "read mta round 1")
	}
	mtaRound1, err := tecdsa.DecodeMtaRound1Message(cipher, mtaRound1Bytes)
	if err != nil {
		return errors.Wrap(err, "decode mta round 1")
	}

	mtaReply, err := p2.HandleMtaRound1(ctx, mtaRound1)
	if err != nil {
		return errors.Wrap(err, "handle mta round 1")
	}
	mtaReplyBytes, err := mtaReply.Encode()
	if err != nil {
		return errors.Wrap(err, "encode mta reply")
	}
	if err := writeFrame(conn, mtaReplyBytes); err != nil {
		return errors.Wrap(err, "send mta reply")
	}

	signRound1Bytes, err := readFrame(conn)
	if err != nil {
		return errors.Wrap(err, "read sign round 1")
	}
	signRound1, err := tecdsa.DecodeSignRound1Message(signRound1Bytes)
	if err != nil {
		return errors.Wrap(err, "decode sign round 1")
	}

	finish, err := p2.HandleSignRound1(ctx, signRound1)
	if err != nil {
		return errors.Wrap(err, "handle sign round 1")
	}

	finishBytes, err := finish.Encode()
	if err != nil {
		return errors.Wrap(err, "encode sign finish")
	}
	if err := writeFrame(conn, finishBytes); err != nil {
		return errors.Wrap(err, "send sign finish")
	}

	return nil
}

func messageDigest(path string) ([32]byte, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "read message")
	}
	return sha256.Sum256(data), nil
}

// writeFrame/readFrame frame each protocol message with a 4-byte length
// prefix using tecdsa's own wire endianness, so the two sides never need
// to guess a message's length from its contents.
func writeFrame(conn net.Conn, data []byte) error {
	var lengthBytes [4]byte
	tecdsa.DefaultEndian.PutUint32(lengthBytes[:], uint32(len(data)))
	if _, err := conn.Write(lengthBytes[:]); err != nil {
		return err
	}
	_, err := conn.Write(data)
	return err
}

func readFrame(conn net.Conn) ([]byte, error) {
	var lengthBytes [4]byte
	if _, err := io.ReadFull(conn, lengthBytes[:]); err != nil {
		return nil, err
	}

	data := make([]byte, tecdsa.DefaultEndian.Uint32(lengthBytes[:]))
	if _, err := io.ReadFull(conn, data); err != nil {
		return nil, err
	}
	return data, nil
}
