package commands

import (
	"fmt"
	"io"

	secretService "github.com/allisson/quickie/internal/secret/service"
)

// RunCreateTokenHash prints a new creation token and the hash to configure as CREATE_TOKEN_HASH.
// The plain token is shown once and never stored by the server.
func RunCreateTokenHash(tokens secretService.AccessTokenService, writer io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	plainToken, hashedToken, err := tokens.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	if format == formatJSON {
		return writeJSON(writer, map[string]string{
			"token":             plainToken,
			"create_token_hash": hashedToken,
		})
	}

	_, _ = fmt.Fprintln(writer, "# Send this token as 'Authorization: Bearer <token>' when creating secrets.")
	_, _ = fmt.Fprintln(writer, "# It is shown only once.")
	_, _ = fmt.Fprintf(writer, "TOKEN=%q\n", plainToken)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# Server configuration")
	_, _ = fmt.Fprintf(writer, "CREATE_TOKEN_HASH=%q\n", hashedToken)
	return nil
}

// RunGeneratePassword prints a password the way the vault generates one when the creator
// supplies none.
func RunGeneratePassword(keys secretService.KeyGenerator, minBytes, maxBytes int, writer io.Writer) error {
	password, err := keys.Generate(minBytes, maxBytes)
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}
	_, err = fmt.Fprintln(writer, password)
	return err
}

// RunGeneratePassphrase prints words space-separated words from the passphrase word list.
func RunGeneratePassphrase(generator *secretService.PassphraseGenerator, words int, writer io.Writer) error {
	passphrase, err := generator.Generate(words)
	if err != nil {
		return fmt.Errorf("failed to generate passphrase: %w", err)
	}
	_, err = fmt.Fprintln(writer, passphrase)
	return err
}
