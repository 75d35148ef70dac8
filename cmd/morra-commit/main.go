package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/commitment"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/morra"
)

type CLI struct {
	Seal   SealCmd   `cmd:"" help:"Draw a secret and print the commitment for a move."`
	Verify VerifyCmd `cmd:"" help:"Check that a move and secret open a commitment."`
}

type SealCmd struct {
	Card       uint8  `short:"c" help:"Card to play (1-5)." required:""`
	Prediction uint8  `short:"p" help:"Predicted total (2-10)." required:""`
	Scheme     string `short:"s" help:"Hash scheme: sha256 or keccak256." default:"sha256"`
	Secret     string `help:"Use this hex secret instead of drawing one."`
}

type VerifyCmd struct {
	Commitment string `arg:"" help:"Commitment hash (hex)."`
	Card       uint8  `short:"c" help:"Revealed card." required:""`
	Prediction uint8  `short:"p" help:"Revealed prediction." required:""`
	Secret     string `help:"Revealed secret (hex)." required:""`
	Scheme     string `short:"s" help:"Hash scheme: sha256 or keccak256." default:"sha256"`
}

type sealed struct {
	Scheme     commitment.Scheme `json:"scheme"`
	Card       uint8             `json:"card"`
	Prediction uint8             `json:"prediction"`
	Secret     string            `json:"secret"`
	Commitment string            `json:"commitment"`
}

func (cmd *SealCmd) Run() error {
	if cmd.Card < morra.MinCard || cmd.Card > morra.MaxCard {
		return fmt.Errorf("card must be between %d and %d", morra.MinCard, morra.MaxCard)
	}
	if cmd.Prediction < morra.MinPrediction || cmd.Prediction > morra.MaxPrediction {
		return fmt.Errorf("prediction must be between %d and %d", morra.MinPrediction, morra.MaxPrediction)
	}
	scheme, err := commitment.ParseScheme(cmd.Scheme)
	if err != nil {
		return err
	}

	var secret commitment.Secret
	if cmd.Secret != "" {
		secret, err = commitment.ParseSecret(cmd.Secret)
	} else {
		secret, err = commitment.NewSecret()
	}
	if err != nil {
		return err
	}

	hash, err := commitment.Compute(scheme, cmd.Card, cmd.Prediction, secret)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sealed{
		Scheme:     scheme,
		Card:       cmd.Card,
		Prediction: cmd.Prediction,
		Secret:     secret.String(),
		Commitment: hash.String(),
	})
}

func (cmd *VerifyCmd) Run() error {
	scheme, err := commitment.ParseScheme(cmd.Scheme)
	if err != nil {
		return err
	}
	hash, err := commitment.ParseHash(cmd.Commitment)
	if err != nil {
		return err
	}
	secret, err := commitment.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}

	ok, err := commitment.Verify(scheme, hash, cmd.Card, cmd.Prediction, secret)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("move does not open commitment %s", hash)
	}
	fmt.Println("ok")
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("morra-commit"),
		kong.Description("Create and check Morra move commitments offline."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
