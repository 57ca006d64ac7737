// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the YAML run configuration.
//
// A minimal file:
//
//	seed: 42
//	steps: 200
//	validator: gas-priority
//	fork:
//	  url: http://localhost:8545
//	  block: 19000000
//	warm:
//	  accounts:
//	    - "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
//	  storage:
//	    - address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
//	      slots: ["0x0", "0x1"]
//	agents:
//	  count: 8
//	  balance: "1000000000000000000"
//	output:
//	  cache: weth.cache
package config

import (
	"bytes"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/evmsim/chainclient"
	"github.com/vechain/evmsim/sim"
)

// Config is the content of a run configuration file.
type Config struct {
	Seed      uint64 `yaml:"seed"`
	Steps     uint64 `yaml:"steps"`
	Validator string `yaml:"validator"`
	Fork      Fork   `yaml:"fork"`
	Warm      Warm   `yaml:"warm"`
	Agents    Agents `yaml:"agents"`
	Output    Output `yaml:"output"`
}

// Fork selects the remote chain and bounds the calls made to it.
type Fork struct {
	URL     string        `yaml:"url"`
	Block   uint64        `yaml:"block"` // 0 is the latest block
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
	Backoff time.Duration `yaml:"backoff"`
}

// Warm lists what to fetch before a run.
type Warm struct {
	Accounts []string      `yaml:"accounts"`
	Storage  []WarmStorage `yaml:"storage"`
}

// WarmStorage lists slots of one account. Slots are decimal or 0x prefixed hex.
type WarmStorage struct {
	Address string   `yaml:"address"`
	Slots   []string `yaml:"slots"`
}

// Agents sizes the population of transfer agents driven by the run command.
// Amounts are in wei, decimal or 0x prefixed hex.
type Agents struct {
	Count    int    `yaml:"count"`
	Balance  string `yaml:"balance"`
	MaxValue string `yaml:"max-value"`
}

// Output names the files written by a run.
type Output struct {
	Cache    string `yaml:"cache"`
	Snapshot string `yaml:"snapshot"`
}

// Default returns the configuration used for unset fields.
func Default() Config {
	opts := chainclient.DefaultOptions()
	return Config{
		Steps:     100,
		Validator: "random",
		Fork: Fork{
			Timeout: opts.Timeout,
			Retries: opts.Retries,
			Backoff: opts.Backoff,
		},
		Agents: Agents{
			Balance:  "1000000000000000000",
			MaxValue: "1000000000000000",
		},
		Output: Output{
			Cache:    "evmsim.cache",
			Snapshot: "evmsim.snapshot",
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %v", path)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown
// fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field that has a constrained value.
func (c *Config) Validate() error {
	if _, err := sim.ValidatorByName(c.Validator); err != nil {
		return err
	}
	if c.Fork.URL != "" && !strings.Contains(c.Fork.URL, "://") {
		return errors.Errorf("fork url %q has no scheme", c.Fork.URL)
	}
	if c.Fork.Timeout <= 0 {
		return errors.New("fork timeout must be positive")
	}
	if c.Fork.Retries < 0 {
		return errors.New("fork retries must not be negative")
	}
	if c.Fork.Backoff < 0 {
		return errors.New("fork backoff must not be negative")
	}
	if _, err := c.WarmAccounts(); err != nil {
		return err
	}
	if _, err := c.WarmStorage(); err != nil {
		return err
	}
	if c.Agents.Count < 0 {
		return errors.New("agent count must not be negative")
	}
	if _, _, err := c.AgentFunds(); err != nil {
		return err
	}
	return nil
}

// ClientOptions returns the chainclient options of the fork section.
func (c *Config) ClientOptions() chainclient.Options {
	return chainclient.Options{
		Timeout: c.Fork.Timeout,
		Retries: c.Fork.Retries,
		Backoff: c.Fork.Backoff,
	}
}

// SimOptions returns the seed and validator as Env options.
func (c *Config) SimOptions() ([]sim.Option, error) {
	v, err := sim.ValidatorByName(c.Validator)
	if err != nil {
		return nil, err
	}
	return []sim.Option{sim.WithSeed(c.Seed), sim.WithValidator(v)}, nil
}

// AgentFunds returns the starting balance of each agent and the largest
// amount an agent transfers in one step.
func (c *Config) AgentFunds() (balance, maxValue uint256.Int, err error) {
	if balance, err = parseWord("agent balance", c.Agents.Balance); err != nil {
		return
	}
	maxValue, err = parseWord("agent max value", c.Agents.MaxValue)
	return
}

// WarmAccounts parses the warm account list.
func (c *Config) WarmAccounts() ([]common.Address, error) {
	addrs := make([]common.Address, 0, len(c.Warm.Accounts))
	for _, s := range c.Warm.Accounts {
		addr, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// SlotList is the parsed form of a WarmStorage entry.
type SlotList struct {
	Address common.Address
	Slots   []uint256.Int
}

// WarmStorage parses the warm storage list, keeping file order.
func (c *Config) WarmStorage() ([]SlotList, error) {
	out := make([]SlotList, 0, len(c.Warm.Storage))
	for _, ws := range c.Warm.Storage {
		addr, err := parseAddress(ws.Address)
		if err != nil {
			return nil, err
		}
		list := SlotList{Address: addr}
		for _, s := range ws.Slots {
			slot, err := parseSlot(s)
			if err != nil {
				return nil, errors.Wrapf(err, "storage of %v", addr)
			}
			list.Slots = append(list.Slots, slot)
		}
		out = append(out, list)
	}
	return out, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseSlot(s string) (uint256.Int, error) {
	return parseWord("slot", s)
}

func parseWord(what, s string) (uint256.Int, error) {
	b, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok || b.Sign() < 0 {
		return uint256.Int{}, errors.Errorf("invalid %v %q", what, s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return uint256.Int{}, errors.Errorf("%v %q overflows 256 bits", what, s)
	}
	return *v, nil
}
