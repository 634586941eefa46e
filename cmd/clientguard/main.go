package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.APIKey != "" {
		req.Header.Set("X-Admin-API-Key", c.APIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

// readOverrides arma el body {"overrides": ...} desde un archivo JSON
// (--overrides) o un JSON inline (--overrides-json).
func readOverrides(file, inline string) ([]byte, error) {
	var raw []byte
	switch {
	case file != "" && inline != "":
		return nil, fmt.Errorf("usar --overrides o --overrides-json, no ambos")
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		raw = b
	case inline != "":
		raw = []byte(inline)
	default:
		return json.Marshal(map[string]any{})
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("overrides no es JSON válido: %w", err)
	}
	return json.Marshal(map[string]any{"overrides": doc})
}

func main() {
	var (
		baseURL = envOr("CLIENTGUARD_URL", "http://localhost:8080")
		apiKey  = envOr("CLIENTGUARD_API_KEY", "")
		out     = envOr("CLIENTGUARD_OUT", "json")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "clientguard",
		Short: "CLI para el policy engine de configuración de clients OAuth",
	}

	root.PersistentFlags().StringVar(&baseURL, "base-url", baseURL, "URL base del API (env CLIENTGUARD_URL)")
	root.PersistentFlags().StringVar(&apiKey, "api-key", apiKey, "API key (env CLIENTGUARD_API_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: timeout}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.APIKey = apiKey
		cl.OutFormat = out
	}

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "Listar el catálogo de profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/v1/policy/profiles", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("profiles fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Listar el catálogo de presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/v1/policy/presets", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("presets fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	presetCmd := &cobra.Command{
		Use:   "preset <preset-id>",
		Short: "Mostrar un preset con defaults, locks y metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/v1/policy/presets/"+args[0], nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("preset fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	var composeFile, composeJSON string
	composeCmd := &cobra.Command{
		Use:   "compose <preset-id>",
		Short: "Componer la configuración efectiva de un preset con overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readOverrides(composeFile, composeJSON)
			if err != nil {
				return err
			}
			status, resp, err := cl.do("POST", "/v1/policy/presets/"+args[0]+"/compose", body)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("compose fallo: status=%d body=%s", status, string(resp))
			}
			cl.print(status, resp)
			return nil
		},
	}
	composeCmd.Flags().StringVar(&composeFile, "overrides", "", "Archivo JSON con overrides")
	composeCmd.Flags().StringVar(&composeJSON, "overrides-json", "", "Overrides JSON inline")

	var checkFile, checkJSON string
	checkCmd := &cobra.Command{
		Use:   "check <preset-id>",
		Short: "Evaluar overrides: composición + validación + findings de seguridad",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readOverrides(checkFile, checkJSON)
			if err != nil {
				return err
			}
			status, resp, err := cl.do("POST", "/v1/policy/presets/"+args[0]+"/check", body)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("check fallo: status=%d body=%s", status, string(resp))
			}
			cl.print(status, resp)
			return nil
		},
	}
	checkCmd.Flags().StringVar(&checkFile, "overrides", "", "Archivo JSON con overrides")
	checkCmd.Flags().StringVar(&checkJSON, "overrides-json", "", "Overrides JSON inline")

	root.AddCommand(profilesCmd, presetsCmd, presetCmd, composeCmd, checkCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
