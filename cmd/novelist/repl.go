package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/novelist-go/pkg/chat"
	"github.com/minhyannv/novelist-go/pkg/export"
	loggerpkg "github.com/minhyannv/novelist-go/pkg/logger"
)

const separator = "--------------------"

// replOptions configures REPL behavior.
type replOptions struct {
	Verbose bool
	Logger  loggerpkg.Logger
}

// runREPL starts an interactive session. It returns nil on exit or end of input.
func runREPL(session *chat.Session, opts replOptions, in io.Reader, out io.Writer) error {
	if session == nil {
		return fmt.Errorf("chat session is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}

	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl start", map[string]any{"session_id": session.ID})

	reader := bufio.NewReader(in)
	printWelcome(out)

	for {
		_, _ = fmt.Fprint(out, "\n>> 你: ")
		line, ok, err := readLine(reader)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out)
			return nil
		}

		input := strings.TrimSpace(line)
		switch strings.ToLower(input) {
		case "exit", "/exit", "/quit", "/q":
			_, _ = fmt.Fprintln(out, "感谢使用，再见！")
			return nil
		case "save", "/save":
			open, err := saveHistory(session, reader, out, opts)
			if err != nil {
				return err
			}
			if !open {
				return nil
			}
			continue
		case "/help", "/h":
			printHelp(out)
			continue
		case "/clear", "/c":
			session.Reset()
			_, _ = fmt.Fprintln(out, "聊天记录已清空。")
			continue
		}

		if input == "" {
			_, _ = fmt.Fprintln(out, "输入不能为空，请继续。")
			continue
		}

		loggerpkg.Debug(opts.Verbose, opts.Logger, "input received", map[string]any{
			"bytes":   len(input),
			"history": len(session.History()),
		})
		_, _ = fmt.Fprint(out, "\n--- 正在思考中... ---\n\n")

		reply, err := session.Send(input)
		if err != nil {
			_, _ = fmt.Fprintf(out, "\n[API调用出错] %v\n\n", err)
		} else {
			_, _ = fmt.Fprintf(out, "\n>> AI: %s\n\n", reply)
		}
		_, _ = fmt.Fprintln(out, separator)
	}
}

// readLine returns the next line without its terminator. Lines have no length
// limit. ok is false once input is exhausted.
func readLine(reader *bufio.Reader) (line string, ok bool, err error) {
	line, err = reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", false, nil
			}
			return strings.TrimRight(line, "\r\n"), true, nil
		}
		return "", false, fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

// saveHistory asks for a file name until the history is written. open is
// false when input ends before a name is given.
func saveHistory(session *chat.Session, reader *bufio.Reader, out io.Writer, opts replOptions) (open bool, err error) {
	history := session.History()
	if len(history) == 0 {
		_, _ = fmt.Fprintln(out, "当前没有聊天记录可以保存。")
		return true, nil
	}

	for {
		_, _ = fmt.Fprint(out, "请输入要保存的文件名 (例如: 第一章.txt): ")
		line, ok, err := readLine(reader)
		if err != nil {
			return false, err
		}
		if !ok {
			_, _ = fmt.Fprintln(out)
			return false, nil
		}

		name, err := export.NormalizeFilename(line)
		if err != nil {
			_, _ = fmt.Fprintln(out, "文件名不能为空，请重新输入。")
			continue
		}

		abs, err := export.WriteFile(name, history)
		if err != nil {
			loggerpkg.Debug(opts.Verbose, opts.Logger, "save failed", map[string]any{
				"session_id": session.ID,
				"path":       name,
				"error":      err.Error(),
			})
			_, _ = fmt.Fprintf(out, "[文件保存错误] %v，请重试。\n", err)
			continue
		}

		loggerpkg.Debug(opts.Verbose, opts.Logger, "history saved", map[string]any{
			"session_id": session.ID,
			"path":       abs,
			"messages":   len(history),
		})
		_, _ = fmt.Fprintf(out, "\n✅ 聊天记录已成功保存到 %s\n\n", abs)
		return true, nil
	}
}

func printWelcome(out io.Writer) {
	_, _ = fmt.Fprintln(out, "--- 欢迎使用小说创作助手 ---")
	_, _ = fmt.Fprintln(out, "你可以直接输入你的想法或指令，输入 'save' 保存记录，输入 'exit' 退出程序。")
	_, _ = fmt.Fprintln(out, "输入 '/help' 查看全部命令。")
}

func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "命令:")
	_, _ = fmt.Fprintln(out, "  save   - 保存聊天记录到 txt 文件")
	_, _ = fmt.Fprintln(out, "  exit   - 退出程序")
	_, _ = fmt.Fprintln(out, "  /clear - 清空聊天记录")
	_, _ = fmt.Fprintln(out, "  /help  - 显示本帮助")
}
