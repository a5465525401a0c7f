package app

import (
	"fmt"

	secretHTTP "github.com/allisson/quickie/internal/secret/http"
	secretService "github.com/allisson/quickie/internal/secret/service"
	secretUseCase "github.com/allisson/quickie/internal/secret/usecase"
)

// RandomSource returns the CSPRNG-backed random source.
func (c *Container) RandomSource() *secretService.Entropy {
	c.randomInit.Do(func() {
		c.random = secretService.NewEntropy(nil)
	})
	return c.random
}

// KeyGenerator returns the identifier and password generator.
func (c *Container) KeyGenerator() secretService.KeyGenerator {
	c.keysInit.Do(func() {
		c.keys = secretService.NewKeyGenerator(c.RandomSource())
	})
	return c.keys
}

// AccessTokenService returns the service that issues and verifies creation tokens.
func (c *Container) AccessTokenService() (secretService.AccessTokenService, error) {
	c.tokensInit.Do(func() {
		c.tokens = secretService.NewAccessTokenService(c.KeyGenerator())
	})
	return c.tokens, nil
}

// PassphraseGenerator returns the word-list passphrase generator.
func (c *Container) PassphraseGenerator() (*secretService.PassphraseGenerator, error) {
	err := c.once(&c.passphrasesInit, "passphrases", func() error {
		words, err := secretService.LoadWordList(c.config.WordsDictionaryFile)
		if err != nil {
			return fmt.Errorf("failed to load passphrase word list: %w", err)
		}
		c.passphrases, err = secretService.NewPassphraseGenerator(c.RandomSource(), words)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.passphrases, nil
}

// Vault returns the secret vault, decorated with business metrics when enabled.
func (c *Container) Vault() (secretUseCase.Vault, error) {
	err := c.once(&c.vaultInit, "vault", func() error {
		var err error
		c.vault, err = c.initVault()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.vault, nil
}

// SecretHandler returns the HTTP handler for secrets.
func (c *Container) SecretHandler() (*secretHTTP.SecretHandler, error) {
	err := c.once(&c.secretHandlerInit, "secretHandler", func() error {
		var err error
		c.secretHandler, err = c.initSecretHandler()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.secretHandler, nil
}

func (c *Container) initVault() (secretUseCase.Vault, error) {
	logger := c.Logger()
	cfg := c.config.VaultConfig()

	st, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for vault: %w", err)
	}
	logStore(logger, c.config)

	vault, err := secretUseCase.NewVault(
		cfg,
		st,
		c.RandomSource(),
		c.KeyGenerator(),
		secretService.NewScryptDeriver(cfg.KDF, cfg.KeyLength, cfg.SaltLength),
		secretService.NewSecretBoxCipher(),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault: %w", err)
	}

	if !c.config.MetricsEnabled {
		return vault, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics for vault: %w", err)
	}
	return secretUseCase.NewVaultWithMetrics(vault, businessMetrics), nil
}

func (c *Container) initSecretHandler() (*secretHTTP.SecretHandler, error) {
	vault, err := c.Vault()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault for secret handler: %w", err)
	}

	passphrases, err := c.PassphraseGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase generator for secret handler: %w", err)
	}

	cfg := c.config.VaultConfig()
	return secretHTTP.NewSecretHandler(vault, passphrases, secretHTTP.HandlerConfig{
		AppURL:             c.config.AppURL,
		DefaultExpiryHours: cfg.DefaultExpiryHours,
		MaxExpiryHours:     cfg.MaxExpiryHours,
		NonceLength:        cfg.NonceLength,
		SaltLength:         cfg.SaltLength,
		PassphraseWords:    c.config.PassphraseWords,
	}, c.Logger()), nil
}
