package masterdata

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/tawseel/internal/domain"
)

// Confidence grades how a master data match was established.
type Confidence string

const (
	// ConfidenceCodeArea is a code match confirmed by the area-name hint.
	ConfidenceCodeArea Confidence = "code+area"

	// ConfidenceCode is a match on the authoritative code field alone.
	ConfidenceCode Confidence = "code"

	// ConfidenceName is a whole-word match of the number inside the
	// record's display name.
	ConfidenceName Confidence = "name"
)

// Match is the tagged result of one matching strategy.
type Match struct {
	ID         int64
	Confidence Confidence
	Strategy   string
}

// Display-name prefixes the courier uses ahead of numbers, per record kind.
const (
	blockPrefixes    = "blk|block"
	roadPrefixes     = "rd|road"
	buildingPrefixes = "bldg|building"
)

// transient lookup failures get one retry before degrading.
const lookupRetryDelay = 200 * time.Millisecond

// Resolver maps human-readable address numbers to courier IDs.
//
// Block resolution is mandatory and propagates failures; road and
// building are optional downstream, so a confirmed absence degrades to
// zero. A transport failure on road/building lookup is retried once and
// then also degrades to zero, but is logged at error level so it can be
// told apart from genuine data absence.
type Resolver struct {
	source Source
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the given master data source.
func NewResolver(source Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, logger: logger}
}

// ResolveBlock resolves a block number to its courier ID. The optional
// areaHint confirms ambiguous matches against the record's display name.
// Returns a domain error when the block cannot be resolved - block is
// mandatory for every order.
func (r *Resolver) ResolveBlock(ctx context.Context, number int, areaHint string) (int64, error) {
	records, err := r.source.ListBlocks(ctx, strconv.Itoa(number))
	if err != nil {
		return 0, domain.WrapError(err, domain.EUNAVAILABLE, "masterdata.block", "block lookup failed")
	}

	m := r.matchRecord(records, number, areaHint, blockPrefixes)
	if m == nil {
		return 0, domain.Errorf(domain.EINVALID, "masterdata.block",
			"block %d not found in courier master data", number)
	}

	if m.Confidence == ConfidenceCode && areaHint != "" {
		r.logger.Warn("area hint did not confirm block match, using code match",
			"block", number,
			"area_hint", areaHint,
			"block_id", m.ID,
		)
	}

	r.logger.Debug("block resolved",
		"block", number,
		"block_id", m.ID,
		"strategy", m.Strategy,
	)
	return m.ID, nil
}

// ResolveRoad resolves a road number within a block. Returns 0 when the
// road is absent from master data or the lookup keeps failing - road is
// optional for destinations, so neither case is fatal here.
func (r *Resolver) ResolveRoad(ctx context.Context, blockID int64, number int) (int64, error) {
	records, err := r.listWithRetry(ctx, func(ctx context.Context) ([]Record, error) {
		return r.source.ListRoads(ctx, blockID, strconv.Itoa(number))
	})
	if err != nil {
		r.logger.Error("road lookup unavailable, degrading to unresolved",
			"block_id", blockID,
			"road", number,
			"error", err,
		)
		return 0, nil
	}

	m := r.matchRecord(records, number, "", roadPrefixes)
	if m == nil {
		r.logger.Debug("road not present in master data",
			"block_id", blockID,
			"road", number,
		)
		return 0, nil
	}
	return m.ID, nil
}

// ResolveBuilding resolves a building number on a road. Same degradation
// rules as ResolveRoad. Callers must only invoke this with a confirmed
// road ID - a building cannot be validated without its parent road.
func (r *Resolver) ResolveBuilding(ctx context.Context, blockID, roadID int64, number int) (int64, error) {
	records, err := r.listWithRetry(ctx, func(ctx context.Context) ([]Record, error) {
		return r.source.ListBuildings(ctx, roadID, blockID, strconv.Itoa(number))
	})
	if err != nil {
		r.logger.Error("building lookup unavailable, degrading to unresolved",
			"block_id", blockID,
			"road_id", roadID,
			"building", number,
			"error", err,
		)
		return 0, nil
	}

	m := r.matchRecord(records, number, "", buildingPrefixes)
	if m == nil {
		r.logger.Debug("building not present in master data",
			"block_id", blockID,
			"road_id", roadID,
			"building", number,
		)
		return 0, nil
	}
	return m.ID, nil
}

// ConvertNumbersToIDs resolves a full AddressNumbers to courier IDs,
// enforcing the resolution chain: road resolution requires the block,
// building resolution requires a confirmed road. A failed road forces
// the building to unresolved regardless of the supplied number.
func (r *Resolver) ConvertNumbersToIDs(ctx context.Context, numbers domain.AddressNumbers, areaHint string) (domain.ResolvedAddressIDs, error) {
	blockID, err := r.ResolveBlock(ctx, numbers.Block, areaHint)
	if err != nil {
		return domain.ResolvedAddressIDs{}, err
	}

	ids := domain.ResolvedAddressIDs{BlockID: blockID}

	if numbers.HasRoad() {
		ids.RoadID, err = r.ResolveRoad(ctx, blockID, numbers.Road)
		if err != nil {
			return domain.ResolvedAddressIDs{}, err
		}
	}

	if ids.RoadID != 0 && numbers.HasBuilding() {
		ids.BuildingID, err = r.ResolveBuilding(ctx, blockID, ids.RoadID, numbers.Building)
		if err != nil {
			return domain.ResolvedAddressIDs{}, err
		}
	}

	return ids, nil
}

// matchRecord applies the matching strategies in priority order:
//  1. code match confirmed by the area hint (hint given only for blocks)
//  2. code-only match
//  3. whole-word number match in the display name, optionally preceded
//     by the kind's prefix ("blk", "rd", "bldg", ...)
func (r *Resolver) matchRecord(records []Record, number int, areaHint, prefixes string) *Match {
	code := strconv.Itoa(number)

	if areaHint != "" {
		for _, rec := range records {
			if rec.Code == code && strings.Contains(strings.ToLower(rec.Name), areaHint) {
				return &Match{ID: rec.ID, Confidence: ConfidenceCodeArea, Strategy: "code+area"}
			}
		}
	}

	for _, rec := range records {
		if rec.Code == code {
			return &Match{ID: rec.ID, Confidence: ConfidenceCode, Strategy: "code"}
		}
	}

	namePattern := regexp.MustCompile(`(?:\b(?:` + prefixes + `)\.?\s*)?\b` + code + `\b`)
	for _, rec := range records {
		if namePattern.MatchString(strings.ToLower(rec.Name)) {
			return &Match{ID: rec.ID, Confidence: ConfidenceName, Strategy: "name"}
		}
	}

	return nil
}

// listWithRetry retries a master data listing once on failure before
// giving up. Lookups are cheap reads, so a single retry covers the
// transient transport errors seen in practice.
func (r *Resolver) listWithRetry(ctx context.Context, list func(context.Context) ([]Record, error)) ([]Record, error) {
	var records []Record
	backoff := retry.WithMaxRetries(1, retry.NewConstant(lookupRetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		records, err = list(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	return records, err
}
