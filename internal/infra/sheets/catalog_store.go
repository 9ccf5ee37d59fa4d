package sheets

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/distrisur/pedidos-go/internal/common"
	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/cache"
	"github.com/distrisur/pedidos-go/internal/infra/observability"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CatalogStore implements port.CatalogStore against the spreadsheet.
// Reads go through a TTL cache; when the sheet is unreachable the store
// serves the last successfully fetched data and warns the operator, so a
// flaky upstream degrades instead of emptying the catalog mid-dialogue.
type CatalogStore struct {
	client  *Client
	mode    domain.PricingMode
	metrics *observability.Metrics
	logger  *zap.Logger

	clientsCache    *cache.InMemory[[]domain.Client]
	categoriesCache *cache.InMemory[[]domain.Category]
	productsCache   *cache.InMemory[[]domain.Product]

	// Last-known-good copies, kept without TTL for degraded mode.
	mu             sync.RWMutex
	lastClients    []domain.Client
	lastCategories []domain.Category
	lastProducts   []domain.Product
}

// NewCatalogStore creates the store. ttl bounds catalog staleness under
// normal operation; degraded mode may serve older data.
func NewCatalogStore(client *Client, mode domain.PricingMode, ttl time.Duration, metrics *observability.Metrics, logger *zap.Logger) *CatalogStore {
	return &CatalogStore{
		client:          client,
		mode:            mode,
		metrics:         metrics,
		logger:          logger,
		clientsCache:    cache.New[[]domain.Client](ttl),
		categoriesCache: cache.New[[]domain.Category](ttl),
		productsCache:   cache.New[[]domain.Product](ttl),
	}
}

// Warm pre-fetches the three catalog tables concurrently at startup.
// A failure is logged, not fatal: the first dialogue that needs data
// retries, and memstore can take over if the sheet never comes back.
func (s *CatalogStore) Warm(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := s.fetchClients(gCtx); return err })
	g.Go(func() error { _, err := s.fetchCategories(gCtx); return err })
	g.Go(func() error { _, err := s.fetchProducts(gCtx); return err })
	return g.Wait()
}

func (s *CatalogStore) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.fetchClients(ctx)
}

func (s *CatalogStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.fetchCategories(ctx)
}

func (s *CatalogStore) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.fetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *CatalogStore) SearchClients(ctx context.Context, term string) ([]domain.Client, error) {
	clients, err := s.fetchClients(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Client{}
	for _, c := range clients {
		if common.ContainsFold(c.Name, term) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CatalogStore) SearchProducts(ctx context.Context, term string, categoryID int) ([]domain.Product, error) {
	products, err := s.fetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for _, p := range products {
		if !p.Active {
			continue
		}
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		if common.ContainsFold(p.Name, term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogStore) GetClient(ctx context.Context, id int) (*domain.Client, error) {
	clients, err := s.fetchClients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			c := clients[i]
			return &c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "client", ID: strconv.Itoa(id)}
}

func (s *CatalogStore) GetCategory(ctx context.Context, id int) (*domain.Category, error) {
	categories, err := s.fetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			c := categories[i]
			return &c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: strconv.Itoa(id)}
}

func (s *CatalogStore) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	products, err := s.fetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "product", ID: strconv.Itoa(id)}
}

// PriceFor resolves the client-specific unit price under the configured
// pricing mode.
func (s *CatalogStore) PriceFor(product *domain.Product, client *domain.Client) int {
	return domain.ResolvePrice(product, client, s.mode)
}

// AddClient allocates max(id)+1, appends the row and returns the record.
// The cache is invalidated so the new client is immediately searchable.
func (s *CatalogStore) AddClient(ctx context.Context, name string) (*domain.Client, error) {
	clients, err := s.fetchClients(ctx)
	if err != nil {
		return nil, err
	}

	maxID := 0
	for _, c := range clients {
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	newClient := &domain.Client{
		ID:        maxID + 1,
		Name:      name,
		PriceTier: 1,
	}
	if err := s.client.AppendRows(ctx, appendClients, [][]string{clientRow(newClient)}); err != nil {
		return nil, &domain.ErrExternalService{Service: "sheets/clients", Err: err}
	}

	// Drop the cached list and refresh the fallback copy in place.
	s.clientsCache.Delete("clients")
	s.mu.Lock()
	s.lastClients = append(append([]domain.Client{}, clients...), *newClient)
	s.mu.Unlock()

	s.logger.Info("client appended to sheet",
		zap.Int("client_id", newClient.ID),
		zap.String("client_name", name),
	)
	return newClient, nil
}

// --- fetchers ---

func (s *CatalogStore) fetchClients(ctx context.Context) ([]domain.Client, error) {
	if cached, ok := s.clientsCache.Get("clients"); ok {
		s.metrics.IncrCacheHit("catalog")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("catalog")

	rows, err := s.client.GetRange(ctx, rangeClients)
	if err != nil {
		return s.degradedClients(err)
	}

	clients := make([]domain.Client, 0, len(rows))
	for _, row := range rows {
		if c, ok := parseClient(row); ok {
			clients = append(clients, c)
		}
	}

	s.clientsCache.Set("clients", clients)
	s.mu.Lock()
	s.lastClients = clients
	s.mu.Unlock()
	return clients, nil
}

func (s *CatalogStore) fetchCategories(ctx context.Context) ([]domain.Category, error) {
	if cached, ok := s.categoriesCache.Get("categories"); ok {
		s.metrics.IncrCacheHit("catalog")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("catalog")

	rows, err := s.client.GetRange(ctx, rangeCategories)
	if err != nil {
		return s.degradedCategories(err)
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		if c, ok := parseCategory(row); ok {
			categories = append(categories, c)
		}
	}

	s.categoriesCache.Set("categories", categories)
	s.mu.Lock()
	s.lastCategories = categories
	s.mu.Unlock()
	return categories, nil
}

func (s *CatalogStore) fetchProducts(ctx context.Context) ([]domain.Product, error) {
	if cached, ok := s.productsCache.Get("products"); ok {
		s.metrics.IncrCacheHit("catalog")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("catalog")

	rows, err := s.client.GetRange(ctx, rangeProducts)
	if err != nil {
		return s.degradedProducts(err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		if p, ok := parseProduct(row); ok {
			products = append(products, p)
		}
	}

	s.productsCache.Set("products", products)
	s.mu.Lock()
	s.lastProducts = products
	s.mu.Unlock()
	return products, nil
}

// --- degraded mode ---

func (s *CatalogStore) degradedClients(cause error) ([]domain.Client, error) {
	s.mu.RLock()
	last := s.lastClients
	s.mu.RUnlock()
	if last != nil {
		s.logger.Warn("sheet unreachable, serving stale clients",
			zap.Int("rows", len(last)), zap.Error(cause))
		return last, nil
	}
	s.metrics.IncrExternalError("sheets/clients")
	return nil, &domain.ErrExternalService{Service: "sheets/clients", Err: cause}
}

func (s *CatalogStore) degradedCategories(cause error) ([]domain.Category, error) {
	s.mu.RLock()
	last := s.lastCategories
	s.mu.RUnlock()
	if last != nil {
		s.logger.Warn("sheet unreachable, serving stale categories",
			zap.Int("rows", len(last)), zap.Error(cause))
		return last, nil
	}
	s.metrics.IncrExternalError("sheets/categories")
	return nil, &domain.ErrExternalService{Service: "sheets/categories", Err: cause}
}

func (s *CatalogStore) degradedProducts(cause error) ([]domain.Product, error) {
	s.mu.RLock()
	last := s.lastProducts
	s.mu.RUnlock()
	if last != nil {
		s.logger.Warn("sheet unreachable, serving stale products",
			zap.Int("rows", len(last)), zap.Error(cause))
		return last, nil
	}
	s.metrics.IncrExternalError("sheets/products")
	return nil, &domain.ErrExternalService{Service: "sheets/products", Err: cause}
}
