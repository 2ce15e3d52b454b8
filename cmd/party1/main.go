// Command party1 runs the commit-then-open side of the two-party ECDSA
// engine: it listens for party2 to connect, drives key-generation and
// signing over that single connection, and persists the resulting key
// store to disk. See cmd/party2 for the other half.
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
	PeerAddress  string `default:":4001" envconfig:"PEER_ADDRESS" json:"peer_address"`
	KeyStorePath string `default:"./party1.keystore.json" envconfig:"KEY_STORE_PATH" json:"key_store_path"`
	MessagePath  string `envconfig:"MESSAGE_PATH" json:"message_path"`
}

func main() {
	ctx := logger.ContextWithLogger(context.Background(), true, true, "")

	cfg := &Config{}
	if err := config.LoadConfig(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Failed to load config : %s", err)
	}

	listener, err := net.Listen("tcp", cfg.PeerAddress)
	if err != nil {
		logger.Fatal(ctx, "Failed to listen on %s : %s", cfg.PeerAddress, err)
	}
	defer listener.Close()

	logger.Info(ctx, "Waiting for party2 on %s", cfg.PeerAddress)

	conn, err := listener.Accept()
	if err != nil {
		logger.Fatal(ctx, "Failed to accept connection : %s", err)
	}
	defer conn.Close()

	signals := watchSignals(ctx, conn)
	defer signals.Stop(ctx)

	logger.Info(ctx, "Connected to party2 : %s", conn.RemoteAddr())

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
// exists yet, and signing if a message was provided. The MtA cipher is
// Paillier over the secp256k1 order, which both sides can build
// independently from the public curve parameters alone, so no
// session-setup exchange is needed before key-generation begins.
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

	sig, err := sign(ctx, conn, cipher, keys, digest)
	if err != nil {
		return errors.Wrap(err, "sign")
	}

	logger.InfoWithFields(ctx, []logger.Field{
		logger.Hex("signature", sig.Bytes()),
	}, "Signature produced")

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

	p1, round1, err := tecdsa.NewKeyGenParty1(ctx)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "new key-gen party one")
	}

	round1Bytes, err := round1.Encode()
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "encode key-gen round 1")
	}
	if err := writeFrame(conn, round1Bytes); err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "send key-gen round 1")
	}

	peerShareBytes, err := readFrame(conn)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "read peer share")
	}
	peerShare, err := tecdsa.DecodeKeyGenRound1MessageP2(peerShareBytes)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "decode peer share")
	}

	round2, err := p1.HandlePeerShare(ctx, peerShare)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "handle peer share")
	}

	round2Bytes, err := round2.Encode()
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "encode key-gen round 2")
	}
	if err := writeFrame(conn, round2Bytes); err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "send key-gen round 2")
	}

	finishBytes, err := readFrame(conn)
	if err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "read key-gen finish")
	}
	if _, err := tecdsa.DecodeKeyGenFinishMessage(finishBytes); err != nil {
		return tecdsa.KeyStore{}, errors.Wrap(err, "decode key-gen finish")
	}

	keys, err := p1.KeyStore()
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
	digest [32]byte) (curve.Signature, error) {

	m := curve.Mod(new(big.Int).SetBytes(digest[:]))

	p1, err := tecdsa.NewSignParty1(ctx, cipher, keys, m)
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "new sign party one")
	}

	nonceComBytes, err := readFrame(conn)
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "read nonce commit")
	}
	nonceCom, err := tecdsa.DecodeNonceCommitMessage(nonceComBytes)
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "decode nonce commit")
	}

	mtaRound1, err := p1.HandleNonceCommit(ctx, nonceCom)
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "handle nonce commit")
	}
	mtaRound1Bytes, err := mtaRound1.Encode()
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "encode mta round 1")
	}
	if err := writeFrame(conn, mtaRound1Bytes); err != nil {
		return curve.Signature{}, errors.Wrap(err, "send mta round 1")
	}

	mtaReplyBytes, err := readFrame(conn)
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "read mta reply")
	}
	mtaReply, err := tecdsa.DecodeMtaRound1MessageP2(cipher, mtaReplyBytes)
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "decode mta reply")
	}

	signRound1, err := p1.HandleMtaReply(ctx, mtaReply)
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "handle mta reply")
	}
	signRound1Bytes, err := signRound1.Encode()
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "encode sign round 1")
	}
	if err := writeFrame(conn, signRound1Bytes); err != nil {
		return curve.Signature{}, errors.Wrap(err, "send sign round 1")
	}

	finishBytes, err := readFrame(conn)
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "read sign finish")
	}
	finish, err := tecdsa.DecodeSignFinishMessage(finishBytes)
	if err != nil {
		return curve.Signature{}, errors.Wrap(err, "decode sign finish")
	}

	return p1.Finish(ctx, finish)
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
