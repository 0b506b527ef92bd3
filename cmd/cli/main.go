package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "transferd-cli",
		Short: "transferd CLI tool",
		Long:  `A command line interface for interacting with the transferd API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the transferd API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd(), transferCmd(), healthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var name, balance string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/accounts/", map[string]string{
				"name":    name,
				"balance": balance,
			})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Account name")
	createCmd.Flags().StringVar(&balance, "balance", "0", "Initial balance")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get an account by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/accounts/"+args[0], nil)
		},
	}

	var limit, offset int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/accounts/?limit=%d&offset=%d", limit, offset)
			return request(http.MethodGet, path, nil)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	var updateName, updateBalance string

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an account's name and balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPut, "/api/v1/accounts/"+args[0], map[string]string{
				"name":    updateName,
				"balance": updateBalance,
			})
		},
	}
	updateCmd.Flags().StringVar(&updateName, "name", "", "Account name")
	updateCmd.Flags().StringVar(&updateBalance, "balance", "0", "Account balance")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account with no transfer history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodDelete, "/api/v1/accounts/"+args[0], nil)
		},
	}

	transfersCmd := &cobra.Command{
		Use:   "transfers <id>",
		Short: "List transfers an account participated in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/accounts/"+args[0]+"/transfers", nil)
		},
	}

	cmd.AddCommand(createCmd, getCmd, listCmd, updateCmd, deleteCmd, transfersCmd)

	return cmd
}

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer operations",
	}

	var senderID, receiverID, amount string

	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Move money between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/transfers/", map[string]string{
				"sender_id":   senderID,
				"receiver_id": receiverID,
				"amount":      amount,
			})
		},
	}
	sendCmd.Flags().StringVar(&senderID, "from", "", "Sender account ID")
	sendCmd.Flags().StringVar(&receiverID, "to", "", "Receiver account ID")
	sendCmd.Flags().StringVar(&amount, "amount", "", "Amount to move")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a transfer by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/transfers/"+args[0], nil)
		},
	}

	var limit, offset int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the transfer ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/transfers/?limit=%d&offset=%d", limit, offset)
			return request(http.MethodGet, path, nil)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(sendCmd, getCmd, listCmd)

	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/ready", nil)
		},
	}
}

// request performs an API call and prints the response body.
func request(method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if len(respBody) > 0 {
		printResponse(respBody)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return nil
}

// printResponse pretty-prints a JSON body, falling back to raw output.
func printResponse(body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}

	fmt.Println(buf.String())
}
