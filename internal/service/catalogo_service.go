package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"snp/internal/dto"
	"snp/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	catalogoCacheKey = "catalogo:productos"
	catalogoCacheTTL = 4 * time.Hour

	// MinCaracteresSugerencia is the shortest term that produces suggestions.
	MinCaracteresSugerencia = 3
	// MaxSugerencias caps the suggestion list.
	MaxSugerencias = 8
)

// CatalogoFetcher downloads the full product catalog.
type CatalogoFetcher interface {
	Fetch(ctx context.Context) ([]model.ProductoCatalogo, error)
}

// CatalogoService serves SKU autocomplete from a cached catalog.
type CatalogoService interface {
	Sugerencias(ctx context.Context, termino string) (dto.SugerenciasResponse, error)
	Recargar(ctx context.Context) (int, error)
}

type catalogoService struct {
	fetcher CatalogoFetcher
	rdb     *redis.Client // optional second level, shared between instances

	group singleflight.Group

	mu        sync.RWMutex
	productos []model.ProductoCatalogo
	loaded    bool
	gen       uint64
}

// NewCatalogoService builds the service. rdb may be nil.
func NewCatalogoService(fetcher CatalogoFetcher, rdb *redis.Client) CatalogoService {
	return &catalogoService{fetcher: fetcher, rdb: rdb}
}

// Sugerencias returns up to MaxSugerencias entries whose SKU starts with the
// upper-cased term. Terms shorter than MinCaracteresSugerencia return nothing
// and do not touch the catalog.
func (s *catalogoService) Sugerencias(ctx context.Context, termino string) (dto.SugerenciasResponse, error) {
	term := strings.ToUpper(strings.TrimSpace(termino))
	resp := dto.SugerenciasResponse{Termino: term, Sugerencias: []dto.SugerenciaProducto{}}
	if len([]rune(term)) < MinCaracteresSugerencia {
		return resp, nil
	}

	productos, err := s.cargar(ctx)
	if err != nil {
		return dto.SugerenciasResponse{}, err
	}

	for _, p := range productos {
		if !strings.HasPrefix(strings.ToUpper(p.SKU), term) {
			continue
		}
		resp.Sugerencias = append(resp.Sugerencias, mapSugerencia(p))
		if len(resp.Sugerencias) == MaxSugerencias {
			break
		}
	}
	return resp, nil
}

// Recargar drops both cache levels and fetches the catalog again.
func (s *catalogoService) Recargar(ctx context.Context) (int, error) {
	s.mu.Lock()
	s.productos = nil
	s.loaded = false
	s.gen++
	s.mu.Unlock()
	s.group.Forget("catalogo")

	if s.rdb != nil {
		_ = s.rdb.Del(ctx, catalogoCacheKey).Err()
	}
	productos, err := s.cargar(ctx)
	if err != nil {
		return 0, err
	}
	return len(productos), nil
}

func (s *catalogoService) cargar(ctx context.Context) ([]model.ProductoCatalogo, error) {
	s.mu.RLock()
	if s.loaded {
		p := s.productos
		s.mu.RUnlock()
		return p, nil
	}
	gen := s.gen
	s.mu.RUnlock()

	ch := s.group.DoChan("catalogo", func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		productos, err := s.desdeRedis(lctx)
		if err != nil {
			productos, err = s.fetcher.Fetch(lctx)
			if err != nil {
				log.Error().Err(err).Msg("catalogo: load failed")
				return nil, err
			}
			s.guardarRedis(lctx, productos)
		}

		s.mu.Lock()
		if s.gen == gen {
			s.productos = productos
			s.loaded = true
		}
		s.mu.Unlock()
		log.Info().Int("productos", len(productos)).Msg("catalogo: loaded")
		return productos, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.ProductoCatalogo), nil
	}
}

func (s *catalogoService) desdeRedis(ctx context.Context) ([]model.ProductoCatalogo, error) {
	if s.rdb == nil {
		return nil, redis.Nil
	}
	cached, err := s.rdb.Get(ctx, catalogoCacheKey).Bytes()
	if err != nil {
		return nil, err
	}
	var productos []model.ProductoCatalogo
	if err := json.Unmarshal(cached, &productos); err != nil {
		return nil, err
	}
	return productos, nil
}

// guardarRedis populates the shared cache, best effort.
func (s *catalogoService) guardarRedis(ctx context.Context, productos []model.ProductoCatalogo) {
	if s.rdb == nil {
		return
	}
	b, err := json.Marshal(productos)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, catalogoCacheKey, b, catalogoCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("catalogo: redis cache write failed")
	}
}

func mapSugerencia(p model.ProductoCatalogo) dto.SugerenciaProducto {
	s := dto.SugerenciaProducto{SKU: p.SKU, Label: p.SKU}
	if precio, ok := p.PrecioReferencia(); ok {
		s.Precio = &precio
		s.Label += " $" + precio.String()
	}
	if p.Stock.Valid && !p.Stock.Decimal.IsZero() {
		stock := p.Stock.Decimal
		s.Stock = &stock
		s.Label += " · Stock: " + stock.String()
	}
	return s
}
