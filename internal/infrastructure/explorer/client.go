package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/infrastructure/config"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Client talks to etherscan-family block-explorer APIs. One instance serves
// all configured chains; the registry supplies per-chain endpoint and key.
type Client struct {
	registry *entity.Registry
	http     *http.Client
	attempts int
	backoff  time.Duration
	logger   *logger.Logger
}

// envelope is the explorer's JSON response wrapper
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// TokenInfo is the explorer's token metadata record
type TokenInfo struct {
	ContractAddress string `json:"contractAddress"`
	TokenName       string `json:"tokenName"`
	Symbol          string `json:"symbol"`
	TotalSupply     string `json:"totalSupply"`
	TokenType       string `json:"tokenType"`
}

// NewClient creates a new explorer client
func NewClient(registry *entity.Registry, cfg *config.ExplorerConfig, log *logger.Logger) *Client {
	return &Client{
		registry: registry,
		http:     &http.Client{Timeout: cfg.RequestTimeout},
		attempts: cfg.RetryAttempts,
		backoff:  cfg.RetryBackoff,
		logger:   log.WithComponent("explorer"),
	}
}

// FetchABI retrieves the verified ABI JSON text for a contract.
// An unverified contract fails with entity.ErrABINotFound; network and HTTP
// failures fail with entity.ErrTransport after bounded retries.
func (c *Client) FetchABI(ctx context.Context, address common.Address, chain entity.ChainID) (string, error) {
	cfg, err := c.registry.Config(chain)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getabi")
	params.Set("address", address.Hex())
	params.Set("apikey", cfg.ExplorerAPIKey)

	env, err := c.get(ctx, cfg.ExplorerURL, params)
	if err != nil {
		return "", err
	}

	var result string
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return "", fmt.Errorf("%w: malformed explorer result: %v", entity.ErrTransport, err)
	}

	if env.Status != "1" {
		if strings.Contains(result, "not verified") {
			return "", fmt.Errorf("%w: %s has no verified source on %s", entity.ErrABINotFound, address.Hex(), chain)
		}
		return "", fmt.Errorf("%w: explorer rejected getabi for %s: %s", entity.ErrTransport, address.Hex(), env.Message)
	}

	c.logger.Info("Fetched contract ABI from explorer",
		zap.String("address", address.Hex()),
		zap.String("chain", string(chain)))
	return result, nil
}

// FetchTokenInfo retrieves token metadata for a contract
func (c *Client) FetchTokenInfo(ctx context.Context, address common.Address, chain entity.ChainID) (*TokenInfo, error) {
	cfg, err := c.registry.Config(chain)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("module", "token")
	params.Set("action", "tokeninfo")
	params.Set("contractaddress", address.Hex())
	params.Set("apikey", cfg.ExplorerAPIKey)

	env, err := c.get(ctx, cfg.ExplorerURL, params)
	if err != nil {
		return nil, err
	}
	if env.Status != "1" {
		return nil, fmt.Errorf("%w: explorer rejected tokeninfo for %s: %s", entity.ErrTransport, address.Hex(), env.Message)
	}

	var infos []TokenInfo
	if err := json.Unmarshal(env.Result, &infos); err != nil {
		return nil, fmt.Errorf("%w: malformed tokeninfo result: %v", entity.ErrTransport, err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: no token info for %s", entity.ErrABINotFound, address.Hex())
	}
	return &infos[0], nil
}

// get issues the request with bounded retry and fixed backoff. Only
// transport-level failures are retried; explorer-level rejections are not.
func (c *Client) get(ctx context.Context, baseURL string, params url.Values) (*envelope, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying explorer request",
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", entity.ErrTransport, ctx.Err())
			}
		}

		env, err := c.doGet(ctx, baseURL, params)
		if err == nil {
			return env, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: explorer request failed after %d attempts: %v", entity.ErrTransport, c.attempts, lastErr)
}

func (c *Client) doGet(ctx context.Context, baseURL string, params url.Values) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected explorer status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode explorer response: %w", err)
	}
	return &env, nil
}
