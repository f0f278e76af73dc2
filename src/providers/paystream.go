package providers

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"sort"
	"strings"
	"sync"

	"stream-observer/src/config"
	"stream-observer/src/interfaces"
	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/serializers"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// STRUCT DEFINITION
// -----------------------------------------------------------------------------

// getStreamSelector is the 4-byte ABI selector of getStream(uint256)
const getStreamSelector = "0x3656eec2"

// streamWordCount is the number of 32-byte words in a getStream return tuple:
// (sender, recipient, deposit, ratePerSecond, startTime, stopTime,
// totalWithdrawn, pausedTime, isPaused, isActive)
const streamWordCount = 10

// PayStream implements interfaces.IProvider for PayStream-style streaming
// contracts reached over JSON-RPC. One instance serves one watch.
type PayStream struct {
	Name       string
	Logger     *logger.Logger
	Config     *models.MWatchConfig
	Serializer interfaces.ISerializer

	// StreamIDs marks the tracked streams. The control API mutates it while
	// the poll loop reads it, hence the lock.
	mu        sync.RWMutex
	StreamIDs map[string]bool
}

// -----------------------------------------------------------------------------
// CONSTRUCTOR AND REGISTRATION
// -----------------------------------------------------------------------------

func init() {
	// Register the provider with the name "paystream" for dynamic creation
	if err := Register("paystream", NewPayStream); err != nil {
		fmt.Printf("Error registering PayStream provider: %v\n", err)
	}
}

// -----------------------------------------------------------------------------

// NewPayStream creates a new PayStream provider instance.
// Matches the interfaces.IProviderConstructor signature: (config, logger, name) -> (IProvider, error)
func NewPayStream(config *config.Config, logger *logger.Logger, name string) (interfaces.IProvider, error) {
	watchName := name
	watchConfig := config.GetWatchByName(watchName)

	if watchConfig == nil {
		logger.Warning("%s : PayStream config not found; returning error", watchName)
		return nil, fmt.Errorf("watch config '%s' not found", watchName)
	}

	provider := &PayStream{
		Name:       watchName,
		Logger:     logger,
		Config:     watchConfig,
		StreamIDs:  make(map[string]bool),
		Serializer: serializers.NewJSONSerializer(),
	}

	if err := provider.ValidateConfiguration(); err != nil {
		return nil, err
	}

	for _, streamID := range watchConfig.StreamIDs {
		if err := validateStreamID(streamID); err != nil {
			return nil, fmt.Errorf("watch '%s': %w", watchName, err)
		}
		provider.StreamIDs[streamID] = true
	}

	return provider, nil
}

// -----------------------------------------------------------------------------

// ValidateConfiguration validates PayStream provider configuration
func (p *PayStream) ValidateConfiguration() error {
	// Check if essential fields are set
	if p.Config.Endpoint == "" {
		return fmt.Errorf("paystream endpoint cannot be empty")
	}

	// The endpoint scheme must match the configured transport
	switch p.Config.Transport {
	case "websocket":
		if !strings.HasPrefix(p.Config.Endpoint, "ws://") && !strings.HasPrefix(p.Config.Endpoint, "wss://") {
			return fmt.Errorf("paystream websocket endpoint must use ws:// or wss:// protocol")
		}
	case "http":
		if !strings.HasPrefix(p.Config.Endpoint, "http://") && !strings.HasPrefix(p.Config.Endpoint, "https://") {
			return fmt.Errorf("paystream http endpoint must use http:// or https:// protocol")
		}
	}

	if !isHexAddress(p.Config.ContractAddress) {
		return fmt.Errorf("invalid contract address '%s'", p.Config.ContractAddress)
	}

	return nil
}

// -----------------------------------------------------------------------------
// IProvider IMPLEMENTATION
// -----------------------------------------------------------------------------

// GetName returns the provider name
func (p *PayStream) GetName() string {
	return p.Name
}

// -----------------------------------------------------------------------------

// GetNetwork returns the chain the watched contract lives on
func (p *PayStream) GetNetwork() string {
	return p.Config.Network
}

// -----------------------------------------------------------------------------

// GetEndPoint returns the RPC endpoint URL
func (p *PayStream) GetEndPoint() string {
	return p.Config.Endpoint
}

// -----------------------------------------------------------------------------

// GetEndpointWithCredentials returns the endpoint with the API key attached
// as a query parameter, the form RPC gateways expect
func (p *PayStream) GetEndpointWithCredentials() string {
	if p.Config.APIKey == "" {
		return p.Config.Endpoint
	}

	u, err := url.Parse(p.Config.Endpoint)
	if err != nil {
		return p.Config.Endpoint
	}
	q := u.Query()
	q.Set("apikey", p.Config.APIKey)
	u.RawQuery = q.Encode()
	return u.String()
}

// -----------------------------------------------------------------------------

// GetStreamIDs returns the currently tracked stream IDs in numeric order
func (p *PayStream) GetStreamIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.StreamIDs))
	for id, tracked := range p.StreamIDs {
		if tracked {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return streamIDLess(ids[i], ids[j]) })
	return ids
}

// -----------------------------------------------------------------------------

// AddStreams starts tracking stream IDs and returns a fetch payload covering
// just the new ones, so their first view does not wait for the next poll
func (p *PayStream) AddStreams(streamIDs []string) ([]byte, error) {
	if len(streamIDs) == 0 {
		return nil, nil
	}
	for _, streamID := range streamIDs {
		if err := validateStreamID(streamID); err != nil {
			return nil, err
		}
	}

	p.mu.Lock()
	for _, streamID := range streamIDs {
		p.StreamIDs[streamID] = true
	}
	p.mu.Unlock()

	return p.buildFetchFor(streamIDs)
}

// -----------------------------------------------------------------------------

// RemoveStreams stops tracking stream IDs. Reading a contract needs no
// unsubscribe on the wire, so there is no payload to send.
func (p *PayStream) RemoveStreams(streamIDs []string) ([]byte, error) {
	p.mu.Lock()
	for _, streamID := range streamIDs {
		p.StreamIDs[streamID] = false
	}
	p.mu.Unlock()

	return nil, nil
}

// -----------------------------------------------------------------------------

// BuildFetchRequest builds one batched eth_call read covering every tracked
// stream. Returns nil when nothing is tracked.
func (p *PayStream) BuildFetchRequest() ([]byte, error) {
	ids := p.GetStreamIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	return p.buildFetchFor(ids)
}

// -----------------------------------------------------------------------------

// BuildSubscribeRequest builds the chain-head subscription used as a push
// refresh hint on websocket transports
func (p *PayStream) BuildSubscribeRequest() ([]byte, error) {
	subMsg, err := p.Serializer.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "sub:" + p.Name,
		"method":  "eth_subscribe",
		"params":  []interface{}{"newHeads"},
	})
	if err != nil {
		p.Logger.Error("%s : failed to serialize subscribe message: %v", p.Name, err)
		return nil, fmt.Errorf("failed to serialize subscribe message: %w", err)
	}
	return subMsg, nil
}

// -----------------------------------------------------------------------------

// ParseMessage processes incoming JSON-RPC frames: batched call responses,
// single responses, subscription acks and chain-head notifications.
func (p *PayStream) ParseMessage(message []byte) (*models.MParsedMessage, error) {
	trimmed := strings.TrimSpace(string(message))
	if trimmed == "" {
		return nil, nil
	}

	// Batched responses arrive as a JSON array, one entry per requested stream
	if strings.HasPrefix(trimmed, "[") {
		var batch []map[string]interface{}
		if err := json.Unmarshal(message, &batch); err != nil {
			p.Logger.Error("%s : failed to unmarshal batch response: %v (raw: %s)", p.Name, err, trimmed)
			return nil, fmt.Errorf("failed to unmarshal batch response: %w", err)
		}

		records := make([]*models.MStreamRecord, 0, len(batch))
		for _, response := range batch {
			record, err := p.parseResponseObject(response)
			if err != nil {
				p.Logger.Error("%s : %v", p.Name, err)
				continue
			}
			if record != nil {
				records = append(records, record)
			}
		}
		if len(records) == 0 {
			return nil, nil
		}
		return &models.MParsedMessage{Records: records}, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(message, &data); err != nil {
		p.Logger.Error("%s : failed to unmarshal message: %v (raw: %s)", p.Name, err, trimmed)
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	// Chain-head notification: a new block may have changed any stream
	if method, ok := data["method"].(string); ok && method == "eth_subscription" {
		return &models.MParsedMessage{RefreshRequested: true}, nil
	}

	// Skip subscription confirmations (responses to our "sub:" request)
	if id, ok := data["id"].(string); ok && strings.HasPrefix(id, "sub:") {
		return nil, nil
	}

	record, err := p.parseResponseObject(data)
	if err != nil {
		p.Logger.Error("%s : %v", p.Name, err)
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return &models.MParsedMessage{Records: []*models.MStreamRecord{record}}, nil
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

// buildFetchFor serializes a batch of eth_call requests, one per stream ID.
// Request IDs carry "<watch>:<streamID>" so responses map back without state.
func (p *PayStream) buildFetchFor(streamIDs []string) ([]byte, error) {
	requests := make([]interface{}, 0, len(streamIDs))
	for _, streamID := range streamIDs {
		encoded, err := encodeStreamID(streamID)
		if err != nil {
			return nil, err
		}
		requests = append(requests, map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      p.Name + ":" + streamID,
			"method":  "eth_call",
			"params": []interface{}{
				map[string]interface{}{
					"to":   p.Config.ContractAddress,
					"data": getStreamSelector + encoded,
				},
				"latest",
			},
		})
	}

	payload, err := p.Serializer.Marshal(requests)
	if err != nil {
		p.Logger.Error("%s : failed to serialize fetch request for streams %v: %v", p.Name, streamIDs, err)
		return nil, fmt.Errorf("failed to serialize fetch request: %w", err)
	}
	return payload, nil
}

// -----------------------------------------------------------------------------

// parseResponseObject turns one JSON-RPC response object into a stream record.
// Responses that are not ours (unknown id shape) are skipped without error.
func (p *PayStream) parseResponseObject(response map[string]interface{}) (*models.MStreamRecord, error) {
	if rpcErr, ok := response["error"]; ok {
		return nil, fmt.Errorf("rpc error for id '%v': %v", response["id"], rpcErr)
	}

	id, ok := response["id"].(string)
	if !ok {
		return nil, nil
	}
	sep := strings.LastIndex(id, ":")
	if sep < 0 {
		return nil, nil
	}
	streamID := id[sep+1:]

	result, ok := response["result"].(string)
	if !ok || result == "" || result == "0x" {
		return nil, fmt.Errorf("empty result for stream '%s'", streamID)
	}

	return p.decodeStreamResult(streamID, result)
}

// -----------------------------------------------------------------------------

// decodeStreamResult decodes the ABI-encoded getStream return tuple
func (p *PayStream) decodeStreamResult(streamID string, result string) (*models.MStreamRecord, error) {
	data := strings.TrimPrefix(result, "0x")
	if len(data) < streamWordCount*64 {
		return nil, fmt.Errorf("short result for stream '%s': %d hex chars", streamID, len(data))
	}

	deposit, err := wordToDecimal(wordAt(data, 2))
	if err != nil {
		return nil, fmt.Errorf("stream '%s' deposit: %w", streamID, err)
	}
	rate, err := wordToDecimal(wordAt(data, 3))
	if err != nil {
		return nil, fmt.Errorf("stream '%s' rate: %w", streamID, err)
	}
	startTime, err := wordToInt64(wordAt(data, 4))
	if err != nil {
		return nil, fmt.Errorf("stream '%s' start time: %w", streamID, err)
	}
	stopTime, err := wordToInt64(wordAt(data, 5))
	if err != nil {
		return nil, fmt.Errorf("stream '%s' stop time: %w", streamID, err)
	}
	totalWithdrawn, err := wordToDecimal(wordAt(data, 6))
	if err != nil {
		return nil, fmt.Errorf("stream '%s' total withdrawn: %w", streamID, err)
	}
	pausedTime, err := wordToInt64(wordAt(data, 7))
	if err != nil {
		return nil, fmt.Errorf("stream '%s' paused time: %w", streamID, err)
	}
	isPaused, err := wordToBool(wordAt(data, 8))
	if err != nil {
		return nil, fmt.Errorf("stream '%s' paused flag: %w", streamID, err)
	}
	isActive, err := wordToBool(wordAt(data, 9))
	if err != nil {
		return nil, fmt.Errorf("stream '%s' active flag: %w", streamID, err)
	}

	return &models.MStreamRecord{
		StreamID:       streamID,
		Network:        p.Config.Network,
		Token:          p.Config.Token,
		Sender:         wordToAddress(wordAt(data, 0)),
		Recipient:      wordToAddress(wordAt(data, 1)),
		Deposit:        deposit,
		RatePerSecond:  rate,
		TotalWithdrawn: totalWithdrawn,
		StartTime:      startTime,
		StopTime:       stopTime,
		PausedTime:     pausedTime,
		IsPaused:       isPaused,
		IsActive:       isActive,
	}, nil
}

// -----------------------------------------------------------------------------

// encodeStreamID left-pads a decimal stream ID into a 32-byte hex word
func encodeStreamID(streamID string) (string, error) {
	n, ok := new(big.Int).SetString(streamID, 10)
	if !ok || n.Sign() < 0 || n.BitLen() > 256 {
		return "", fmt.Errorf("invalid stream ID '%s'", streamID)
	}
	return fmt.Sprintf("%064x", n), nil
}

// -----------------------------------------------------------------------------

func validateStreamID(streamID string) error {
	_, err := encodeStreamID(streamID)
	return err
}

// -----------------------------------------------------------------------------

func wordAt(data string, index int) string {
	return data[index*64 : (index+1)*64]
}

// -----------------------------------------------------------------------------

func wordToBig(word string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(word, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex word '%s'", word)
	}
	return value, nil
}

// -----------------------------------------------------------------------------

func wordToDecimal(word string) (decimal.Decimal, error) {
	value, err := wordToBig(word)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(value, 0), nil
}

// -----------------------------------------------------------------------------

func wordToInt64(word string) (int64, error) {
	value, err := wordToBig(word)
	if err != nil {
		return 0, err
	}
	if !value.IsInt64() {
		return 0, fmt.Errorf("value overflows int64: %s", value)
	}
	return value.Int64(), nil
}

// -----------------------------------------------------------------------------

func wordToBool(word string) (bool, error) {
	value, err := wordToBig(word)
	if err != nil {
		return false, err
	}
	return value.Sign() != 0, nil
}

// -----------------------------------------------------------------------------

// wordToAddress keeps the low 20 bytes of a word as a 0x-prefixed address
func wordToAddress(word string) string {
	return "0x" + word[24:]
}

// -----------------------------------------------------------------------------

// streamIDLess orders decimal stream IDs numerically: shorter strings first,
// equal lengths lexicographically
func streamIDLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// -----------------------------------------------------------------------------

func isHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, r := range s[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
