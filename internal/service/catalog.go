package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mescude1/skinly-ecomm/internal/cache"
	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
	"github.com/mescude1/skinly-ecomm/internal/storage"
)

const (
	ProductPageSize   = 12
	maxProductPage    = math.MaxInt / ProductPageSize // keeps the offset within int

	similarProducts   = 4
	quickSearchLimit  = 10
	quickSearchMinLen = 2
	featuredProducts  = 8
	homeSuggestions   = 6
)

// ProductQuery holds the catalog list filters. Zero values are ignored.
type ProductQuery struct {
	Query       string
	BrandID     string
	ProductType model.ProductType
	FinishType  model.FinishType
	SkinType    model.SkinType
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Page        int
}

// ProductPage is one page of the catalog.
type ProductPage struct {
	Items      []model.Product `json:"data"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// ProductDetail is a product with its reviews and neighbours.
type ProductDetail struct {
	Product       model.Product   `json:"product"`
	Reviews       []model.Review  `json:"reviews"`
	AverageRating float64         `json:"avg_rating"`
	UserReview    *model.Review   `json:"user_review,omitempty"`
	Similar       []model.Product `json:"similar_products"`
}

// SearchHit is a compact search-as-you-type result.
type SearchHit struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
}

// FeedProduct is one entry of the public product feed.
type FeedProduct struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Stock     int         `json:"stock"`
	Image     string      `json:"image"`
	DetailURL string      `json:"detail_url"`
}

// Home is the landing page content.
type Home struct {
	Featured        []model.Product `json:"featured_products"`
	Recommendations []model.Product `json:"recommendations"`
}

// ImageUpload describes a product image received from a staff user.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CatalogService serves product browsing, search, and the public feed.
type CatalogService interface {
	// List returns a page of in-stock products. Pages below 1 become 1 and pages past the end become the last page.
	List(ctx context.Context, q ProductQuery) (*ProductPage, error)

	// Get returns the product detail; userID may be empty for anonymous visitors.
	Get(ctx context.Context, id, userID string) (*ProductDetail, error)

	// QuickSearch returns at most 10 hits, or none for queries shorter than two characters.
	QuickSearch(ctx context.Context, q string) ([]SearchHit, error)

	// Feed returns the serialized public feed {"products":[...]}, served from cache when possible.
	Feed(ctx context.Context) ([]byte, error)

	Brands(ctx context.Context) ([]model.Brand, error)
	Colors(ctx context.Context) ([]model.Color, error)

	// UploadImage stores a new product image, replacing the previous one.
	// The uploaded object is removed again if the product cannot be updated.
	UploadImage(ctx context.Context, productID string, in ImageUpload) (*model.Product, error)

	// Home returns featured products and, for signed-in users, recommendations.
	Home(ctx context.Context, userID string) (*Home, error)
}

type catalogService struct {
	products repository.ProductRepository
	catalog  repository.CatalogRepository
	reviews  repository.ReviewRepository
	recs     RecommendationService
	feed     cache.FeedCache
	store    storage.Storage
	images   imageURLs
	baseURL  string
}

func NewCatalogService(
	products repository.ProductRepository,
	catalog repository.CatalogRepository,
	reviews repository.ReviewRepository,
	recs RecommendationService,
	feed cache.FeedCache,
	store storage.Storage,
	baseURL string,
) CatalogService {
	return &catalogService{
		products: products,
		catalog:  catalog,
		reviews:  reviews,
		recs:     recs,
		feed:     feed,
		store:    store,
		images:   imageURLs{store: store},
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (q ProductQuery) filter() repository.ProductFilter {
	f := repository.ProductFilter{
		Query:       strings.TrimSpace(q.Query),
		InStockOnly: true,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
	}
	if q.BrandID != "" {
		f.BrandIDs = []string{q.BrandID}
	}
	if q.ProductType != "" {
		f.ProductTypes = []model.ProductType{q.ProductType}
	}
	if q.FinishType != "" {
		f.FinishTypes = []model.FinishType{q.FinishType}
	}
	if q.SkinType != "" {
		f.SkinTypes = []model.SkinType{q.SkinType}
	}
	return f
}

func (s *catalogService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page := min(max(q.Page, 1), maxProductPage)
	f := q.filter()

	res, err := s.products.Search(ctx, f, pageQuery(page))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	totalPages := int(math.Ceil(float64(res.Total) / ProductPageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
		res, err = s.products.Search(ctx, f, pageQuery(page))
		if err != nil {
			return nil, fmt.Errorf("search products: %w", err)
		}
	}

	s.images.fill(ctx, res.Items)
	return &ProductPage{
		Items:      res.Items,
		Total:      res.Total,
		Page:       page,
		PageSize:   ProductPageSize,
		TotalPages: totalPages,
	}, nil
}

func pageQuery(page int) repository.PageQuery {
	return repository.PageQuery{Limit: ProductPageSize, Offset: (page - 1) * ProductPageSize}
}

func (s *catalogService) Get(ctx context.Context, id, userID string) (*ProductDetail, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	s.images.fillOne(ctx, product)

	reviews, err := s.reviews.ListByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	detail := &ProductDetail{
		Product:       *product,
		Reviews:       reviews,
		AverageRating: averageRating(reviews),
	}

	if userID != "" {
		r, err := s.reviews.FindByUserAndProduct(ctx, userID, id)
		switch {
		case err == nil:
			detail.UserReview = r
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("load user review: %w", err)
		}
	}

	similar, err := s.products.Find(ctx, repository.ProductFilter{
		InStockOnly:     true,
		ExcludeIDs:      []string{product.ID},
		SimilarBrandIDs: []string{product.BrandID},
		SimilarTypes:    []model.ProductType{product.ProductType},
	}, similarProducts)
	if err != nil {
		return nil, fmt.Errorf("load similar products: %w", err)
	}
	s.images.fill(ctx, similar)
	detail.Similar = similar

	return detail, nil
}

// averageRating is the mean rating rounded to one decimal, 0 without reviews.
func averageRating(reviews []model.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}

func (s *catalogService) QuickSearch(ctx context.Context, q string) ([]SearchHit, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < quickSearchMinLen {
		return []SearchHit{}, nil
	}

	products, err := s.products.Find(ctx, repository.ProductFilter{Query: q, InStockOnly: true}, quickSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	hits := make([]SearchHit, 0, len(products))
	for _, p := range products {
		hits = append(hits, SearchHit{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    p.BrandName,
			Price:    p.Price,
			ImageURL: s.images.url(ctx, p.ImageKey),
		})
	}
	return hits, nil
}

func (s *catalogService) Feed(ctx context.Context) ([]byte, error) {
	log := logging.Ctx(ctx)

	if payload, ok, err := s.feed.Get(ctx); err != nil {
		log.Warn().Err(err).Msg("feed_cache_read_failed")
	} else if ok {
		return payload, nil
	}

	products, err := s.products.Find(ctx, repository.ProductFilter{InStockOnly: true}, 0)
	if err != nil {
		return nil, fmt.Errorf("load feed products: %w", err)
	}

	items := make([]FeedProduct, 0, len(products))
	for _, p := range products {
		image := s.images.url(ctx, p.ImageKey)
		if strings.HasPrefix(image, "/") {
			image = s.baseURL + image
		}
		items = append(items, FeedProduct{
			ID:        p.ID,
			Name:      p.Name,
			Price:     json.Number(p.Price.StringFixed(2)),
			Stock:     p.StockQuantity,
			Image:     image,
			DetailURL: s.baseURL + "/products/" + p.ID,
		})
	}

	payload, err := json.Marshal(struct {
		Products []FeedProduct `json:"products"`
	}{items})
	if err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}

	if err := s.feed.Set(ctx, payload); err != nil {
		log.Warn().Err(err).Msg("feed_cache_write_failed")
	}
	return payload, nil
}

func (s *catalogService) Brands(ctx context.Context) ([]model.Brand, error) {
	return s.catalog.ListBrands(ctx)
}

func (s *catalogService) Colors(ctx context.Context) ([]model.Color, error) {
	return s.catalog.ListColors(ctx)
}

func (s *catalogService) UploadImage(ctx context.Context, productID string, in ImageUpload) (*model.Product, error) {
	if in.Reader == nil {
		return nil, storage.ErrUnsupportedImage
	}
	if err := storage.ValidateImage(in.ContentType); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	key := storage.ProductImageKey(in.Filename, in.ContentType)
	obj, err := s.store.Put(ctx, key, in.Reader, storage.PutOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"product-id":        productID,
			"original-filename": in.Filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	if err := s.products.UpdateImageKey(ctx, productID, obj.Key); err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if old := product.ImageKey; old != "" && old != obj.Key {
		if err := s.store.Delete(ctx, old); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", old).Msg("delete_previous_image_failed")
		}
	}

	product.ImageKey = obj.Key
	s.images.fillOne(ctx, product)
	if err := s.feed.Invalidate(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("feed_cache_invalidate_failed")
	}
	return product, nil
}

func (s *catalogService) Home(ctx context.Context, userID string) (*Home, error) {
	featured, err := s.products.Find(ctx, repository.ProductFilter{InStockOnly: true}, featuredProducts)
	if err != nil {
		return nil, fmt.Errorf("load featured products: %w", err)
	}
	s.images.fill(ctx, featured)

	home := &Home{Featured: featured, Recommendations: []model.Product{}}
	if userID != "" {
		recs, err := s.recs.Generate(ctx, userID, homeSuggestions)
		if err != nil {
			return nil, err
		}
		home.Recommendations = recs
	}
	return home, nil
}
