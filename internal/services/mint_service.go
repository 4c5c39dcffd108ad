// Package services – MintService
//
// MintService runs the reward flow: provision the completion the NFT will
// reference, illustrate it, mint the token, then record the NFT and flag the
// completion. The on-chain write happens before any database write; if the
// database fails afterwards the token exists without an off-chain row and
// the transaction hash is logged at error level.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/rehab-rewards-backend/internal/chain"
	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/events"
	"github.com/tbourn/rehab-rewards-backend/internal/observability"
	"github.com/tbourn/rehab-rewards-backend/internal/repo"
)

// ImagePreview is returned by GenerateImage.
type ImagePreview struct {
	ImageURL    string         `json:"imageUrl"`
	NFTMetadata chain.Metadata `json:"nftMetadata"`
	ImagePrompt string         `json:"imagePrompt"`
	TokenURI    string         `json:"tokenUri"`
}

// MintResult is the successful outcome of a mint.
type MintResult struct {
	NFTMetadata          chain.Metadata `json:"nftMetadata"`
	TransactionHash      string         `json:"transactionHash"`
	PolygonScanURL       string         `json:"polygonScanUrl"`
	ContractAddress      string         `json:"contractAddress"`
	MintedTo             string         `json:"mintedTo"`
	TokenID              *string        `json:"tokenId,omitempty"`
	NFTID                string         `json:"nftId"`
	PatientID            string         `json:"patientId"`
	ExerciseCompletionID string         `json:"exerciseCompletionId"`
	Rarity               string         `json:"rarity"`
	Signer               string         `json:"signer"`
}

// MintService coordinates provisioning, image generation and minting.
type MintService struct {
	DB          *gorm.DB
	Provisioner *Provisioner
	Images      *ImageService

	// Admin signs server-side mints (EVM admin key, or the local ledger when
	// no RPC endpoint is configured). Wallet relays client-signed mints and
	// may be nil.
	Admin  chain.Minter
	Wallet chain.Minter

	Events events.Publisher
	Chain  config.ChainConfig

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *MintService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// BuildMetadata assembles ERC-721 metadata for an achievement.
func BuildMetadata(in AchievementRequest, imageURL string, at time.Time) chain.Metadata {
	rarity := domain.RarityForScore(in.Score())
	player := lo.Ternary(strings.TrimSpace(in.PlayerName) == "", "a rehabilitation patient", strings.TrimSpace(in.PlayerName))
	return chain.Metadata{
		Name: fmt.Sprintf("%s Achievement", strings.TrimSpace(in.ExerciseType)),
		Description: fmt.Sprintf("Awarded to %s for completing %s with a form score of %d/100 (%s).",
			player, strings.TrimSpace(in.ExerciseType), in.Score(), rarity),
		Image: imageURL,
		Attributes: []domain.NFTAttribute{
			{TraitType: "Exercise Type", Value: in.ExerciseType},
			{TraitType: "Score", Value: in.Score()},
			{TraitType: "Difficulty", Value: in.Difficulty},
			{TraitType: "Body Part", Value: in.BodyPart},
			{TraitType: "Date", Value: at.UTC().Format("2006-01-02")},
			{TraitType: "Rarity", Value: rarity},
		},
	}
}

// GenerateImage illustrates an achievement without minting it. The returned
// token URI is what a wallet should pass to mintTo before calling MintSigned.
func (s *MintService) GenerateImage(ctx context.Context, in AchievementRequest) (*ImagePreview, error) {
	var fields []string
	if strings.TrimSpace(in.ExerciseType) == "" {
		fields = append(fields, "exerciseType")
	}
	if in.CompletionScore == nil {
		fields = append(fields, "completionScore")
	}
	if err := missing(fields...); err != nil {
		return nil, err
	}

	img := s.Images.Generate(ctx, in)
	meta := BuildMetadata(in, img.URL, s.now())
	uri, err := chain.TokenURI(meta)
	if err != nil {
		return nil, err
	}
	return &ImagePreview{ImageURL: img.URL, NFTMetadata: meta, ImagePrompt: img.Prompt, TokenURI: uri}, nil
}

// GenerateAndMint validates in, provisions, illustrates and mints with the
// admin signer, or with the wallet signer when a patient supplies a signed
// transaction.
func (s *MintService) GenerateAndMint(ctx context.Context, role domain.Role, in AchievementRequest) (*MintResult, error) {
	if strings.TrimSpace(in.SignedTx) != "" {
		return s.MintSigned(ctx, role, in)
	}

	tr := otel.Tracer("services/MintService")
	ctx, span := tr.Start(ctx, "GenerateAndMint",
		trace.WithAttributes(attribute.String("exercise.type", in.ExerciseType)),
	)
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	to, err := s.recipient(ctx, in.WalletAddress)
	if err != nil {
		return nil, err
	}

	prov, err := s.Provisioner.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	img := s.Images.Generate(ctx, in)
	meta := BuildMetadata(in, img.URL, s.now())
	uri, err := chain.TokenURI(meta)
	if err != nil {
		return nil, err
	}

	rcpt, err := s.mint(ctx, s.Admin, chain.MintRequest{To: to, TokenURI: uri})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mint failed")
		return nil, err
	}
	return s.record(ctx, prov, in, meta, img.Prompt, rcpt)
}

// MintSigned relays a wallet-signed mintTo. Only patients may use it; the
// metadata is read back from the token URI inside the transaction.
func (s *MintService) MintSigned(ctx context.Context, role domain.Role, in AchievementRequest) (*MintResult, error) {
	tr := otel.Tracer("services/MintService")
	ctx, span := tr.Start(ctx, "MintSigned")
	defer span.End()

	if role != domain.RolePatient {
		return nil, ErrForbidden
	}
	var fields []string
	if strings.TrimSpace(in.SignedTx) == "" {
		fields = append(fields, "signedTransaction")
	}
	if strings.TrimSpace(in.ExerciseType) == "" {
		fields = append(fields, "exerciseType")
	}
	if in.CompletionScore == nil {
		fields = append(fields, "completionScore")
	}
	if err := missing(fields...); err != nil {
		return nil, err
	}
	if s.Wallet == nil {
		return nil, config.Missing("CHAIN_RPC_URL")
	}

	sm, err := chain.DecodeSignedMint(in.SignedTx, s.Chain.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	meta, err := chain.ParseTokenURI(sm.TokenURI)
	if err != nil {
		meta = BuildMetadata(in, "", s.now())
	}
	if in.WalletAddress == "" {
		in.WalletAddress = sm.To
	}

	prov, err := s.Provisioner.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.mint(ctx, s.Wallet, chain.MintRequest{To: sm.To, TokenURI: sm.TokenURI, SignedTx: in.SignedTx})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mint failed")
		return nil, err
	}
	return s.record(ctx, prov, in, meta, "", rcpt)
}

// recipient returns wallet when it is a valid address, otherwise the
// configured test wallet, otherwise ErrInvalidInput.
func (s *MintService) recipient(ctx context.Context, wallet string) (string, error) {
	wallet = strings.TrimSpace(wallet)
	if chain.ValidAddress(wallet) {
		return wallet, nil
	}
	if chain.ValidAddress(s.Chain.TestWallet) {
		zerolog.Ctx(ctx).Warn().Str("wallet_address", wallet).Msg("wallet address is not a hex address; minting to test wallet")
		return s.Chain.TestWallet, nil
	}
	return "", fmt.Errorf("%w: walletAddress must be a 0x-prefixed 20-byte hex address", ErrInvalidInput)
}

func (s *MintService) mint(ctx context.Context, m chain.Minter, req chain.MintRequest) (*chain.Receipt, error) {
	if m == nil {
		return nil, config.Missing("CHAIN_RPC_URL")
	}
	rcpt, err := m.Mint(ctx, req)
	if err != nil {
		observability.Mints.WithLabelValues(m.Signer(), "failure").Inc()
		zerolog.Ctx(ctx).Error().Err(err).Str("signer", m.Signer()).Str("to", req.To).Msg("mint failed")
		if errors.Is(err, config.ErrMissingConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMintFailed, err)
	}
	observability.Mints.WithLabelValues(m.Signer(), "success").Inc()
	return rcpt, nil
}

func (s *MintService) record(ctx context.Context, prov *Provisioned, in AchievementRequest, meta chain.Metadata, prompt string, rcpt *chain.Receipt) (*MintResult, error) {
	log := zerolog.Ctx(ctx)
	rarity := domain.RarityForScore(in.Score())

	nft := &domain.NFT{
		PatientID:            prov.PatientID,
		ExerciseCompletionID: prov.ExerciseCompletionID,
		Name:                 meta.Name,
		ImageURL:             meta.Image,
		ImagePrompt:          prompt,
		Attributes:           meta.Attributes,
		TransactionHash:      rcpt.TxHash,
		TokenID:              rcpt.TokenID,
		Rarity:               rarity,
		MintedTo:             rcpt.To,
	}
	if err := repo.CreateNFT(ctx, s.DB, nft); err != nil {
		log.Error().Err(err).Str("tx_hash", rcpt.TxHash).Str("completion_id", prov.ExerciseCompletionID).Msg("minted on chain but failed to record nft")
		return nil, fmt.Errorf("record nft (tx %s): %w", rcpt.TxHash, err)
	}
	if err := repo.MarkCompletionMinted(ctx, s.DB, prov.ExerciseCompletionID, rcpt.TokenID); err != nil {
		log.Error().Err(err).Str("tx_hash", rcpt.TxHash).Str("completion_id", prov.ExerciseCompletionID).Msg("minted on chain but failed to flag completion")
		return nil, fmt.Errorf("flag completion (tx %s): %w", rcpt.TxHash, err)
	}
	log.Info().Str("nft_id", nft.ID).Str("tx_hash", rcpt.TxHash).Str("rarity", rarity).Str("signer", rcpt.Signer).Msg("nft minted")

	if s.Events != nil {
		ev := events.MintedEvent{
			NFTID:                nft.ID,
			PatientID:            nft.PatientID,
			ExerciseCompletionID: nft.ExerciseCompletionID,
			TransactionHash:      rcpt.TxHash,
			TokenID:              rcpt.TokenID,
			Rarity:               rarity,
			Signer:               rcpt.Signer,
			MintedAt:             nft.CreatedAt,
		}
		if err := s.Events.PublishMinted(ctx, ev); err != nil {
			log.Warn().Err(err).Str("nft_id", nft.ID).Msg("publish minted event failed")
		}
	}

	return &MintResult{
		NFTMetadata:          meta,
		TransactionHash:      rcpt.TxHash,
		PolygonScanURL:       s.Chain.TxURL(rcpt.TxHash),
		ContractAddress:      s.Chain.ContractAddress,
		MintedTo:             rcpt.To,
		TokenID:              rcpt.TokenID,
		NFTID:                nft.ID,
		PatientID:            prov.PatientID,
		ExerciseCompletionID: prov.ExerciseCompletionID,
		Rarity:               rarity,
		Signer:               rcpt.Signer,
	}, nil
}
