package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	apierrors "github.com/olgasafonova/mediawiki-client/internal/errors"
	"github.com/olgasafonova/mediawiki-client/wiki"
)

type tokenRow struct {
	Kind  string `json:"kind" yaml:"kind"`
	Token string `json:"token" yaml:"token"`
}

func fetchToken[K wiki.TokenKind](ctx context.Context, s *wiki.Session, reveal bool) (tokenRow, error) {
	tok, err := wiki.GetToken[K](ctx, s)
	if err != nil {
		return tokenRow{}, fmt.Errorf("%s token: %w", tok.Kind(), err)
	}
	row := tokenRow{Kind: tok.Kind(), Token: tok.String()}
	if reveal {
		row.Token = tok.Value()
	}
	return row, nil
}

func (a *app) tokenCommand() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Fetch every action token of the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}

			fetchers := []func(context.Context, *wiki.Session, bool) (tokenRow, error){
				fetchToken[wiki.Csrf],
				fetchToken[wiki.Watch],
				fetchToken[wiki.Patrol],
				fetchToken[wiki.Rollback],
				fetchToken[wiki.UserRights],
				fetchToken[wiki.CreateAccount],
			}
			tokens := make([]tokenRow, 0, len(fetchers))
			rows := make([][]string, 0, len(fetchers))
			for _, fetch := range fetchers {
				row, err := fetch(ctx, s, reveal)
				if err != nil {
					return err
				}
				tokens = append(tokens, row)
				rows = append(rows, []string{row.Kind, row.Token})
			}
			return a.render(tokens, []string{"Kind", "Token"}, rows)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print token values instead of redacting them")
	return cmd
}

// changeKind holds the fields that decide which file a recent change goes to
type changeKind struct {
	Type      string `json:"type"`
	LogType   string `json:"logtype"`
	LogAction string `json:"logaction"`
}

func (c changeKind) path(dir string) string {
	if c.Type == "log" {
		return filepath.Join(dir, pathSegment(c.LogType), pathSegment(c.LogAction)+".json")
	}
	return filepath.Join(dir, pathSegment(c.Type)+".json")
}

type changeFile struct {
	Path    string `json:"path" yaml:"path"`
	Changes int    `json:"changes" yaml:"changes"`
}

func (a *app) recentChangesCommand() *cobra.Command {
	var (
		dir   string
		limit int
	)
	cmd := &cobra.Command{
		Use:     "recentchanges",
		Aliases: []string{"rc"},
		Short:   "Dump recent changes as NDJSON files grouped by type and log action",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}

			files := make(map[string]*os.File)
			counts := make(map[string]int)
			defer func() {
				for _, f := range files {
					_ = f.Close()
				}
			}()

			for raw, err := range s.QueryRecentChanges(limit).All(ctx) {
				if err != nil {
					return err
				}
				kind, err := wiki.DecodeRecord[changeKind](raw)
				if err != nil {
					return err
				}
				path := kind.path(dir)
				f, ok := files[path]
				if !ok {
					if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
						return err
					}
					if f, err = os.Create(path); err != nil {
						return err
					}
					files[path] = f
				}
				var line bytes.Buffer
				if err := json.Compact(&line, raw); err != nil {
					return err
				}
				line.WriteByte('\n')
				if _, err := line.WriteTo(f); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				counts[path]++
			}

			summary := make([]changeFile, 0, len(counts))
			for path, n := range counts {
				summary = append(summary, changeFile{Path: path, Changes: n})
			}
			sort.Slice(summary, func(i, j int) bool { return summary[i].Path < summary[j].Path })
			rows := make([][]string, len(summary))
			for i, f := range summary {
				rows[i] = []string{f.Path, strconv.Itoa(f.Changes)}
			}
			return a.render(summary, []string{"File", "Changes"}, rows)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "rc", "directory to write the change files to")
	cmd.Flags().IntVar(&limit, "limit", 5000, "changes per API page")
	return cmd
}

type transfer struct {
	Name   string `json:"name" yaml:"name"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Bytes  int    `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Result string `json:"result,omitempty" yaml:"result,omitempty"`
}

func (a *app) downloadCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download <file name>",
		Short: "Download File:<name> from the wiki",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			s, err := a.session(ctx)
			if err != nil {
				return err
			}

			data, ok, err := s.DownloadFile(ctx, name)
			if err != nil {
				return err
			}
			if !ok {
				return apierrors.NewNotFoundError("file", name)
			}

			path := filepath.Join(dir, pathSegment(name))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			result := transfer{Name: name, Path: path, Bytes: len(data)}
			return a.render(result, []string{"File", "Path", "Bytes"},
				[][]string{{name, path, strconv.Itoa(len(data))}})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to save the file in")
	return cmd
}

func (a *app) uploadCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a local file to the wiki",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			if name == "" {
				name = filepath.Base(path)
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			token, err := wiki.GetToken[wiki.Csrf](ctx, s)
			if err != nil {
				return err
			}
			resp, err := s.UploadFile(ctx, token, name, f)
			if err != nil {
				return err
			}

			result := transfer{Name: name, Path: path}
			if result.Result, err = resp.GetString("upload", "result"); err != nil {
				return err
			}
			if result.Result != "Success" {
				var warnings json.RawMessage
				if resp.Decode(&warnings, "upload", "warnings") == nil {
					a.logger.Warn("Upload not completed", "file", name, "warnings", string(warnings))
				}
			}
			return a.render(result, []string{"File", "Path", "Result"},
				[][]string{{name, path, result.Result}})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "file name on the wiki (default: base name of path)")
	return cmd
}
