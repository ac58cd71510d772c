package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"credwallet/go-core/internal/credential"
	"credwallet/go-core/internal/did"
	"credwallet/go-core/internal/ecies"
	"credwallet/go-core/internal/identity"
	"credwallet/go-core/internal/wallet"

	"github.com/urfave/cli/v2"
)

var flagMnemonic = &cli.StringFlag{
	Name:    "mnemonic",
	Usage:   "space separated recovery phrase",
	EnvVars: []string{"CREDWALLET_MNEMONIC"},
}
var flagPassphrase = &cli.StringFlag{
	Name:    "passphrase",
	Usage:   "optional mnemonic passphrase",
	EnvVars: []string{"CREDWALLET_PASSPHRASE"},
}
var flagEntity = &cli.StringFlag{
	Name:  "entity",
	Usage: "DID entity tag, u (user) or i (institution); defaults to the config value",
}
var flagIndex = &cli.UintFlag{
	Name:  "index",
	Usage: "signing key address index",
}
var flagIn = &cli.StringFlag{
	Name:  "in",
	Value: "-",
	Usage: "input JSON file, - for stdin",
}
var flagPubkey = &cli.StringFlag{
	Name:  "pubkey",
	Usage: "hex encoded P-256 public key, compressed or uncompressed",
}

var identityFlags = []cli.Flag{flagMnemonic, flagPassphrase, flagEntity, flagIndex}

func mnemonicCommand(_ *session) *cli.Command {
	flagBits := &cli.IntFlag{Name: "bits", Value: 128, Usage: "entropy size: 128, 160, 192, 224 or 256"}
	return &cli.Command{
		Name:  "mnemonic",
		Usage: "generate or check recovery phrases",
		Subcommands: []*cli.Command{
			{
				Name:  "new",
				Usage: "print a fresh mnemonic",
				Flags: []cli.Flag{flagBits},
				Action: func(cCtx *cli.Context) error {
					words, err := identity.GenerateMnemonic(cCtx.Int(flagBits.Name))
					if err != nil {
						return err
					}
					fmt.Println(strings.Join(words, " "))
					return nil
				},
			},
			{
				Name:  "check",
				Usage: "validate word count, dictionary and checksum",
				Flags: []cli.Flag{flagMnemonic},
				Action: func(cCtx *cli.Context) error {
					valid := identity.ValidateMnemonic(identity.ParseMnemonic(cCtx.String(flagMnemonic.Name)))
					if err := printJSON(map[string]bool{"valid": valid}); err != nil {
						return err
					}
					if !valid {
						return cli.Exit("invalid mnemonic", exitRejected)
					}
					return nil
				},
			},
		},
	}
}

func identityCommand(rt *session) *cli.Command {
	return &cli.Command{
		Name:  "identity",
		Usage: "derive identities from a mnemonic",
		Subcommands: []*cli.Command{
			{
				Name:  "derive",
				Usage: "print the DID, key id and public keys",
				Flags: identityFlags,
				Action: func(cCtx *cli.Context) error {
					id, err := rt.identity(cCtx)
					if err != nil {
						return err
					}
					return printJSON(id.Public())
				},
			},
		},
	}
}

func jwtCommand(rt *session) *cli.Command {
	flagToken := &cli.StringFlag{Name: "token", Usage: "compact JWT", Required: true}
	flagSubject := &cli.StringFlag{Name: "subject", Usage: "sub claim"}
	flagClaims := &cli.StringFlag{Name: "claims", Usage: "extra claims as a JSON object"}
	return &cli.Command{
		Name:  "jwt",
		Usage: "sign, verify and decode ES256 tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "sign",
				Usage: "issue a token signed by the derived identity",
				Flags: append([]cli.Flag{flagSubject, flagClaims}, identityFlags...),
				Action: func(cCtx *cli.Context) error {
					extra := map[string]any{}
					if raw := strings.TrimSpace(cCtx.String(flagClaims.Name)); raw != "" {
						if err := decodeJSON([]byte(raw), &extra); err != nil {
							return cli.Exit("claims: "+err.Error(), exitInvalidInput)
						}
					}
					id, err := rt.identity(cCtx)
					if err != nil {
						return err
					}
					token, err := rt.core.IssueToken(cCtx.Context, id, cCtx.String(flagSubject.Name), extra)
					if err != nil {
						return err
					}
					fmt.Println(token)
					return nil
				},
			},
			{
				Name:  "verify",
				Usage: "check signature and time claims",
				Flags: []cli.Flag{flagToken, flagPubkey},
				Action: func(cCtx *cli.Context) error {
					pub, err := decodeKeyHex(cCtx.String(flagPubkey.Name))
					if err != nil {
						return err
					}
					res := rt.core.VerifyJWT(cCtx.String(flagToken.Name), pub)
					if err := printJSON(res); err != nil {
						return err
					}
					if !res.Valid {
						return cli.Exit("token rejected", exitRejected)
					}
					return nil
				},
			},
			{
				Name:  "decode",
				Usage: "print header and claims without verifying",
				Flags: []cli.Flag{flagToken},
				Action: func(cCtx *cli.Context) error {
					token, err := rt.core.DecodeJWT(cCtx.String(flagToken.Name))
					if err != nil {
						return cli.Exit(err.Error(), exitInvalidInput)
					}
					return printJSON(map[string]any{"header": token.Header, "claims": token.Claims})
				},
			},
		},
	}
}

func vcCommand(rt *session) *cli.Command {
	return &cli.Command{
		Name:  "vc",
		Usage: "sign, verify, hash and cache verifiable credentials",
		Subcommands: []*cli.Command{
			{
				Name:  "sign",
				Usage: "attach a Data Integrity proof",
				Flags: append([]cli.Flag{flagIn}, identityFlags...),
				Action: func(cCtx *cli.Context) error {
					cred, err := readCredential(cCtx.String(flagIn.Name))
					if err != nil {
						return err
					}
					id, err := rt.identity(cCtx)
					if err != nil {
						return err
					}
					signed, err := rt.core.IssueCredential(cCtx.Context, id, cred)
					if err != nil {
						return err
					}
					return printJSON(signed)
				},
			},
			{
				Name:  "verify",
				Usage: "check the proof against a public key",
				Flags: []cli.Flag{flagIn, flagPubkey},
				Action: func(cCtx *cli.Context) error {
					cred, err := readCredential(cCtx.String(flagIn.Name))
					if err != nil {
						return err
					}
					pub, err := decodeKeyHex(cCtx.String(flagPubkey.Name))
					if err != nil {
						return err
					}
					valid := rt.core.VerifyCredential(cred, pub)
					if err := printJSON(map[string]bool{"valid": valid}); err != nil {
						return err
					}
					if !valid {
						return cli.Exit("credential rejected", exitRejected)
					}
					return nil
				},
			},
			{
				Name:  "hash",
				Usage: "print the SHA-256 of the canonical credential",
				Flags: []cli.Flag{flagIn},
				Action: func(cCtx *cli.Context) error {
					cred, err := readCredential(cCtx.String(flagIn.Name))
					if err != nil {
						return err
					}
					h, err := rt.core.HashCredential(cred)
					if err != nil {
						return err
					}
					return printJSON(map[string]string{"hash": h})
				},
			},
			{
				Name:  "cache",
				Usage: "store a credential in the configured local cache",
				Flags: []cli.Flag{flagIn},
				Action: func(cCtx *cli.Context) error {
					cred, err := readCredential(cCtx.String(flagIn.Name))
					if err != nil {
						return err
					}
					key, err := rt.core.CacheCredential(cred)
					if err != nil {
						return err
					}
					return printJSON(map[string]string{"hash": key})
				},
			},
			{
				Name:  "list",
				Usage: "print cached credentials",
				Action: func(cCtx *cli.Context) error {
					all, err := rt.core.CachedCredentials()
					if err != nil {
						return err
					}
					return printJSON(all)
				},
			},
		},
	}
}

func eciesCommand(rt *session) *cli.Command {
	flagRecipient := &cli.StringFlag{Name: "recipient", Usage: "hex encoded recipient public key", Required: true}
	flagEnvelope := &cli.StringFlag{Name: "envelope", Usage: "base64url envelope", Required: true}
	return &cli.Command{
		Name:  "ecies",
		Usage: "encrypt JSON to a public key and open envelopes",
		Subcommands: []*cli.Command{
			{
				Name:  "encrypt",
				Usage: "seal JSON input to --recipient",
				Flags: []cli.Flag{flagIn, flagRecipient},
				Action: func(cCtx *cli.Context) error {
					data, err := readInput(cCtx.String(flagIn.Name))
					if err != nil {
						return err
					}
					if !json.Valid(data) {
						return cli.Exit("input is not JSON", exitInvalidInput)
					}
					recipient, err := ecies.ParseRecipientKey(cCtx.String(flagRecipient.Name))
					if err != nil {
						return err
					}
					env, err := rt.core.Encrypt(json.RawMessage(data), recipient)
					if err != nil {
						return err
					}
					fmt.Println(env)
					return nil
				},
			},
			{
				Name:  "decrypt",
				Usage: "open an envelope addressed to the derived identity",
				Flags: append([]cli.Flag{flagEnvelope}, identityFlags...),
				Action: func(cCtx *cli.Context) error {
					id, err := rt.identity(cCtx)
					if err != nil {
						return err
					}
					var out json.RawMessage
					if err := rt.core.Decrypt(cCtx.Context, id, cCtx.String(flagEnvelope.Name), &out); err != nil {
						return err
					}
					return printJSON(out)
				},
			},
		},
	}
}

func keyCommand(rt *session) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "export public keys",
		Subcommands: []*cli.Command{
			{
				Name:  "pem",
				Usage: "print the SPKI PEM of --pubkey or of the derived signing key",
				Flags: append([]cli.Flag{flagPubkey}, identityFlags...),
				Action: func(cCtx *cli.Context) error {
					var id *wallet.Identity
					if raw := cCtx.String(flagPubkey.Name); raw != "" {
						pub, err := decodeKeyHex(raw)
						if err != nil {
							return err
						}
						id = &wallet.Identity{SigningPublicKey: pub}
					} else {
						derived, err := rt.identity(cCtx)
						if err != nil {
							return err
						}
						id = derived
					}
					text, err := rt.core.ExportPublicKeyPEM(id)
					if err != nil {
						return err
					}
					fmt.Print(text)
					return nil
				},
			},
		},
	}
}

func (rt *session) identity(cCtx *cli.Context) (*wallet.Identity, error) {
	phrase := cCtx.String(flagMnemonic.Name)
	if strings.TrimSpace(phrase) == "" {
		return nil, cli.Exit("--mnemonic or CREDWALLET_MNEMONIC is required", exitInvalidInput)
	}
	var entity did.Entity
	if raw := cCtx.String(flagEntity.Name); raw != "" {
		parsed, err := did.ParseEntity(raw)
		if err != nil {
			return nil, err
		}
		entity = parsed
	}
	index, err := addressIndex(cCtx.Uint(flagIndex.Name))
	if err != nil {
		return nil, err
	}
	return rt.core.ImportIdentity(cCtx.Context, identity.ParseMnemonic(phrase), cCtx.String(flagPassphrase.Name), entity, index)
}

// addressIndex checks --index before narrowing it; every path level is hardened,
// so the index must stay below the hardened offset.
func addressIndex(v uint) (uint32, error) {
	if uint64(v) >= uint64(identity.HardenedOffset) {
		return 0, cli.Exit(fmt.Sprintf("--index %d out of range, must be below %d", v, uint64(identity.HardenedOffset)), exitInvalidInput)
	}
	return uint32(v), nil
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func readCredential(path string) (credential.Credential, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return credential.Parse(data)
}

func decodeKeyHex(raw string) ([]byte, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if raw == "" {
		return nil, cli.Exit("--pubkey is required", exitInvalidInput)
	}
	pub, err := hex.DecodeString(raw)
	if err != nil {
		return nil, cli.Exit("public key is not hex: "+err.Error(), exitInvalidInput)
	}
	return pub, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
