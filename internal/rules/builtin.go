package rules

// Builtin is the version-controlled rule table. Definitions are kept as
// data so new rules and exclusions ship without code changes; external
// packs loaded from .codex/ merge over this table by name.
var Builtin = []Def{
	// ============ Logging ============
	{
		Name:        "no-print-statement",
		Category:    "logging",
		Priority:    PriorityHigh,
		Description: "Use the logging module instead of print statements",
		Rationale:   "print writes to stdout unconditionally: no levels, no handlers, no way to silence it in production.",
		Detection: Detection{
			Triggers:   []string{`(?:^|[^.\w])print\s*\(`},
			Exclusions: []string{`^\s*#`, `pprint`, `""".*print`, `'''.*print`},
		},
		Fix: FixTemplate{
			Template:   "Replace print(...) with logger.info(...) or logger.debug(...)",
			Complexity: "trivial",
		},
		Confidence: 0.9,
		Family:     FamilyPrint,
		Examples: Examples{
			Good: `logger.info("Fetching data for user %s", user_id)`,
			Bad:  `print("Fetching data for user 1")`,
		},
		Tags: []string{"logging", "observability"},
	},
	{
		Name:        "log-exceptions-with-traceback",
		Category:    "logging",
		Priority:    PriorityRecommended,
		Description: "Use logger.exception inside except blocks to keep the traceback",
		Rationale:   "logger.error inside an exception handler drops the stack trace that logger.exception records for free.",
		Detection: Detection{
			Triggers:   []string{`logger\.error\s*\(`, `logging\.error\s*\(`},
			Exclusions: []string{`^\s*#`, `exc_info\s*=\s*True`},
			Keywords:   []string{"except"},
		},
		Fix: FixTemplate{
			Template:   "Inside except blocks, call logger.exception(...) instead of logger.error(...)",
			Complexity: "trivial",
		},
		Confidence: 0.6,
		Examples: Examples{
			Good: "except ValueError:\n    logger.exception(\"parse failed\")",
			Bad:  "except ValueError:\n    logger.error(\"parse failed\")",
		},
		Tags: []string{"logging", "error-handling"},
	},

	// ============ Configuration ============
	{
		Name:        "no-hardcoded-db-path",
		Category:    "configuration",
		Priority:    PriorityHigh,
		Description: "Do not hardcode database file paths outside the settings module",
		Rationale:   "A literal .db path scattered through library code prevents test isolation and per-environment configuration; the settings module is the single place allowed to define it.",
		Detection: Detection{
			Triggers:   []string{`["'][^"']*\.(?:db|sqlite|sqlite3)["']`},
			Exclusions: []string{`^\s*#`, `\*`, `\.gitignore`},
		},
		Fix: FixTemplate{
			Template:   "Import the path from the settings module instead of repeating the literal",
			Complexity: "simple",
		},
		Confidence: 0.8,
		Family:     FamilyHardcodedPath,
		Examples: Examples{
			Good: `conn = sqlite3.connect(settings.DATABASE_PATH)`,
			Bad:  `conn = sqlite3.connect("app.db")`,
		},
		Tags: []string{"configuration", "database"},
	},
	{
		Name:        "no-hardcoded-secret",
		Category:    "security",
		Priority:    PriorityMandatory,
		Description: "Never commit literal passwords, tokens, or API keys",
		Rationale:   "Secrets in source end up in version history forever; read them from the environment or a secret store.",
		Detection: Detection{
			Triggers:   []string{`(?i)(?:password|passwd|secret|api_key|apikey|token)\s*=\s*["'][^"']{4,}["']`},
			Exclusions: []string{`^\s*#`, `(?i)environ`, `(?i)getenv`, `(?i)example`, `(?i)placeholder`, `(?i)changeme`, `\{\{`, `os\.env`},
		},
		Fix: FixTemplate{
			Template:   "Read the value from os.environ or a secrets manager; rotate the committed credential",
			Complexity: "moderate",
		},
		Confidence: 0.7,
		Examples: Examples{
			Good: `API_KEY = os.environ["API_KEY"]`,
			Bad:  `API_KEY = "sk-abc123def456"`,
		},
		Tags: []string{"security", "secrets"},
	},

	// ============ Security ============
	{
		Name:        "no-eval",
		Category:    "security",
		Priority:    PriorityMandatory,
		Description: "Never call eval on strings",
		Rationale:   "eval executes arbitrary code; any input that reaches it becomes a code-injection vector.",
		Detection: Detection{
			Triggers:   []string{`(?:^|[^.\w])eval\s*\(`},
			Exclusions: []string{`^\s*#`, `literal_eval`, `model\.eval\(`, `\.eval\(\)`},
		},
		Fix: FixTemplate{
			Template:   "Use ast.literal_eval for data, or an explicit dispatch table for behavior",
			Complexity: "moderate",
		},
		Confidence: 0.95,
		Examples: Examples{
			Good: `value = ast.literal_eval(text)`,
			Bad:  `value = eval(text)`,
		},
		Tags: []string{"security", "injection"},
	},
	{
		Name:        "no-exec",
		Category:    "security",
		Priority:    PriorityCritical,
		Description: "Never call exec on strings",
		Rationale:   "exec shares eval's injection surface and additionally mutates namespaces invisibly.",
		Detection: Detection{
			Triggers:   []string{`(?:^|[^.\w])exec\s*\(`},
			Exclusions: []string{`^\s*#`, `executemany`, `execute\(`},
		},
		Fix: FixTemplate{
			Template:   "Replace dynamic code execution with explicit imports or a registry",
			Complexity: "moderate",
		},
		Confidence: 0.9,
		Tags:       []string{"security", "injection"},
	},
	{
		Name:        "no-shell-true",
		Category:    "security",
		Priority:    PriorityCritical,
		Description: "Do not pass shell=True to subprocess calls",
		Rationale:   "shell=True routes arguments through the shell, so any unescaped input becomes a command-injection vector.",
		Detection: Detection{
			Triggers:   []string{`shell\s*=\s*True`},
			Exclusions: []string{`^\s*#`},
			Keywords:   []string{"subprocess"},
		},
		Fix: FixTemplate{
			Template:   "Pass the command as an argument list with shell=False (the default)",
			Complexity: "simple",
		},
		Confidence: 0.9,
		Examples: Examples{
			Good: `subprocess.run(["ls", "-l", path])`,
			Bad:  `subprocess.run(f"ls -l {path}", shell=True)`,
		},
		Tags: []string{"security", "subprocess"},
	},
	{
		Name:        "no-assert-outside-tests",
		Category:    "security",
		Priority:    PriorityRecommended,
		Description: "Do not use assert for runtime validation",
		Rationale:   "Asserts are stripped under optimized execution, silently removing the check.",
		Detection: Detection{
			Triggers:   []string{`^\s*assert\s+`},
			Exclusions: []string{`^\s*#`, `_test\.`, `test_`},
		},
		Fix: FixTemplate{
			Template:   "Raise an explicit exception (ValueError, RuntimeError) with a message",
			Complexity: "trivial",
		},
		Confidence: 0.5,
		Tags:       []string{"security", "error-handling"},
	},

	// ============ Error handling ============
	{
		Name:        "no-bare-except",
		Category:    "error-handling",
		Priority:    PriorityHigh,
		Description: "Catch specific exception types, never a bare except",
		Rationale:   "A bare except swallows KeyboardInterrupt, SystemExit, and every bug, making failures undebuggable.",
		Detection: Detection{
			Triggers:   []string{`^\s*except\s*:`},
			Exclusions: []string{`^\s*#`},
		},
		Fix: FixTemplate{
			Template:   "Name the exception types you expect: except (ValueError, KeyError) as e",
			Complexity: "trivial",
		},
		Confidence: 0.95,
		Examples: Examples{
			Good: "except ValueError as e:",
			Bad:  "except:",
		},
		Tags: []string{"error-handling"},
	},
	{
		Name:        "no-silent-pass",
		Category:    "error-handling",
		Priority:    PriorityRecommended,
		Description: "Do not silently pass in exception handlers",
		Rationale:   "except-pass erases the failure entirely; at minimum the handler should log.",
		Detection: Detection{
			Triggers:   []string{`except[^:]*:\s*pass\s*$`},
			Exclusions: []string{`^\s*#`, `contextlib\.suppress`},
		},
		Fix: FixTemplate{
			Template:   "Log the exception, or use contextlib.suppress to make the intent explicit",
			Complexity: "trivial",
		},
		Confidence: 0.8,
		Tags:       []string{"error-handling", "logging"},
	},

	// ============ Style ============
	{
		Name:        "no-wildcard-import",
		Category:    "style",
		Priority:    PriorityRecommended,
		Description: "Import names explicitly instead of using wildcard imports",
		Rationale:   "import * hides where names come from and breaks static tooling.",
		Detection: Detection{
			Triggers:   []string{`^\s*from\s+\S+\s+import\s+\*`},
			Exclusions: []string{`^\s*#`, `# noqa`},
		},
		Fix: FixTemplate{
			Template:   "List the imported names, or import the module and qualify uses",
			Complexity: "simple",
		},
		Confidence: 0.95,
		Tags:       []string{"style", "imports"},
	},
	{
		Name:        "no-mutable-default-arg",
		Category:    "style",
		Priority:    PriorityCritical,
		Description: "Never use mutable default argument values",
		Rationale:   "Default values are evaluated once at definition time, so a list or dict default is shared across every call.",
		Detection: Detection{
			Triggers:   []string{`def\s+\w+\s*\([^)]*=\s*(?:\[\]|\{\}|\(\s*\))`},
			Exclusions: []string{`^\s*#`},
		},
		Fix: FixTemplate{
			Template:   "Default to None and create the container inside the function body",
			Complexity: "trivial",
		},
		Confidence: 0.9,
		Examples: Examples{
			Good: "def add(item, bucket=None):\n    bucket = bucket or []",
			Bad:  "def add(item, bucket=[]):",
		},
		Tags: []string{"style", "correctness"},
	},
	{
		Name:        "prefer-pathlib",
		Category:    "style",
		Priority:    PriorityLow,
		Description: "Prefer pathlib over os.path string manipulation",
		Rationale:   "pathlib paths compose and compare correctly across platforms; os.path calls accumulate into unreadable nests.",
		Detection: Detection{
			Triggers:   []string{`os\.path\.(?:join|exists|dirname|basename|splitext)\s*\(`},
			Exclusions: []string{`^\s*#`},
		},
		Fix: FixTemplate{
			Template:   "Use pathlib.Path / operators and methods (exists, parent, suffix)",
			Complexity: "simple",
		},
		Confidence: 0.6,
		Tags:       []string{"style", "filesystem"},
	},

	// ============ HTTP / async ============
	{
		Name:        "no-blocking-http-in-async",
		Category:    "http",
		Priority:    PriorityHigh,
		Description: "Do not use the blocking requests library inside async code",
		Rationale:   "A synchronous HTTP call inside a coroutine blocks the entire event loop for the duration of the request.",
		Detection: Detection{
			Triggers:   []string{`requests\.(?:get|post|put|patch|delete|head)\s*\(`},
			Exclusions: []string{`^\s*#`},
			Keywords:   []string{"async def", "asyncio"},
		},
		Fix: FixTemplate{
			Template:   "Use httpx.AsyncClient or aiohttp inside async functions",
			Complexity: "moderate",
		},
		Confidence: 0.85,
		Examples: Examples{
			Good: "async with httpx.AsyncClient() as client:\n    resp = await client.get(url)",
			Bad:  "async def fetch():\n    return requests.get(url)",
		},
		Tags: []string{"http", "async"},
	},

	// ============ Dependency management ============
	{
		Name:        "no-pip-install-in-code",
		Category:    "dependency-management",
		Priority:    PriorityCritical,
		Description: "Never install packages from inside application code",
		Rationale:   "Runtime pip installs make deployments non-reproducible and hide dependencies from the manifest.",
		Detection: Detection{
			Triggers:   []string{`pip\s+install`, `pip3\s+install`},
			Exclusions: []string{`^\s*#`, `README`, `\.md`},
		},
		Fix: FixTemplate{
			Template:   "Declare the dependency in the project manifest (pyproject.toml / requirements.txt)",
			Complexity: "simple",
		},
		Confidence: 0.7,
		Tags:       []string{"dependency-management", "packaging"},
	},
	{
		Name:        "pin-dependency-versions",
		Category:    "dependency-management",
		Priority:    PriorityRecommended,
		Description: "Pin dependency versions in requirements files",
		Rationale:   "Unpinned requirements resolve differently over time, so two deploys of the same commit can run different code.",
		Detection: Detection{
			Triggers:   []string{`^[A-Za-z][A-Za-z0-9._-]*\s*(?:>=|~=)[0-9]`},
			Exclusions: []string{`^\s*#`, `==`},
		},
		Fix: FixTemplate{
			Template:   "Pin with == and refresh through a lock/upgrade workflow",
			Complexity: "simple",
		},
		Confidence: 0.5,
		Tags:       []string{"dependency-management", "reproducibility"},
	},
}
