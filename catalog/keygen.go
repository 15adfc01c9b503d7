package catalog

import (
	"context"
	"crypto/ed25519"

	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/store"
)

// keygenCommand generates an Ed25519 keypair and persists it under the
// caller's wallet graph keyed by NAME_MARKER/KEYPAIR_MARKER/PUBKEY_MARKER
// (spec §5/§9), returning both values base58-encoded on the wire per
// §4.4.
type keygenCommand struct {
	desc command.Descriptor
}

func newKeygenCommand(desc command.Descriptor) (command.Command, error) {
	return keygenCommand{desc: desc}, nil
}

func (c keygenCommand) Run(ctx context.Context, cmdCtx *command.Context, inputs map[string]store.Value) (map[string]store.Value, error) {
	nameVal, err := c.desc.Resolve("name", inputs)
	if err != nil {
		return nil, err
	}

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}

	if cmdCtx != nil && cmdCtx.Store != nil {
		wallet := Wallet{Store: cmdCtx.Store, Graph: cmdCtx.Graph}
		if _, err := wallet.Insert(ctx, nameVal.Str, priv, pub); err != nil {
			return nil, err
		}
	}

	return map[string]store.Value{
		"pubkey":  {Kind: store.KindPubkey, Pubkey: to32(pub)},
		"keypair": {Kind: store.KindKeypair, Keypair: to64(priv)},
	}, nil
}
