// Module-level call dispatch (math.sqrt, os.path.join, json.dumps, ...).
// Each handler records the crates it emits against so Cargo.toml stays in
// sync with the generated code. NASA mode swaps external crates for
// std-only lowerings or refuses where no std equivalent exists.

package lowering

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/rustast"
)

type moduleHandler func(c *Converter, e *hir.CallExpr) (rustast.Expr, error)

// mathFloatFuncs map directly onto f64 methods.
var mathFloatFuncs = map[string]string{
	"sqrt": "sqrt", "floor": "floor", "ceil": "ceil", "exp": "exp",
	"log": "ln", "log2": "log2", "log10": "log10", "sin": "sin",
	"cos": "cos", "tan": "tan", "asin": "asin", "acos": "acos",
	"atan": "atan", "sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"fabs": "abs", "isnan": "is_nan", "isinf": "is_infinite",
	"degrees": "to_degrees", "radians": "to_radians", "trunc": "trunc",
}

// moduleDispatch is populated in init: the handlers reach back into
// Converter.convertExpr, so a composite-literal initializer would form an
// initialization cycle.
var moduleDispatch map[string]moduleHandler

func init() {
	moduleDispatch = map[string]moduleHandler{
		// ====== math ======
		"math.pow":       lowerMathPow,
		"math.atan2":     lowerMathAtan2,
		"math.hypot":     lowerMathHypot,
		"math.gcd":       lowerMathGCD,
		"math.factorial": lowerMathFactorial,
		"math.fmod":      lowerMathFmod,

		// ====== os / os.path ======
		"os.getcwd":        lowerOsGetcwd,
		"os.getenv":        lowerOsGetenv,
		"os.listdir":       lowerOsListdir,
		"os.makedirs":      lowerOsMakedirs,
		"os.mkdir":         lowerOsMakedirs,
		"os.remove":        lowerOsRemove,
		"os.rmdir":         lowerOsRmdir,
		"os.rename":        lowerOsRename,
		"os.walk":          lowerOsWalk,
		"os.path.join":     lowerOsPathJoin,
		"os.path.exists":   lowerOsPathExists,
		"os.path.isfile":   lowerOsPathIsFile,
		"os.path.isdir":    lowerOsPathIsDir,
		"os.path.basename": lowerOsPathBasename,
		"os.path.dirname":  lowerOsPathDirname,
		"os.path.splitext": lowerOsPathSplitext,
		"os.path.abspath":  lowerOsPathAbspath,
		"os.path.getsize":  lowerOsPathGetsize,

		// ====== re ======
		"re.compile":   lowerReCompile,
		"re.match":     lowerReMatch,
		"re.fullmatch": lowerReMatch,
		"re.search":    lowerReSearch,
		"re.findall":   lowerReFindall,
		"re.sub":       lowerReSub,
		"re.split":     lowerReSplit,
		"re.escape":    lowerReEscape,

		// ====== json ======
		"json.dumps": lowerJSONDumps,
		"json.loads": lowerJSONLoads,
		"json.dump":  lowerJSONDump,
		"json.load":  lowerJSONLoad,

		// ====== hashlib / base64 ======
		"hashlib.sha256":   lowerHashlibSha256,
		"hashlib.md5":      lowerHashlibMd5,
		"base64.b64encode": lowerBase64Encode,
		"base64.b64decode": lowerBase64Decode,

		// ====== csv ======
		"csv.reader":     lowerCSVReader,
		"csv.writer":     lowerCSVWriter,
		"csv.DictReader": lowerCSVDictReader,
		"csv.DictWriter": lowerCSVWriter,

		// ====== random ======
		"random.random":  lowerRandomRandom,
		"random.randint": lowerRandomRandint,
		"random.uniform": lowerRandomUniform,
		"random.choice":  lowerRandomChoice,
		"random.shuffle": lowerRandomShuffle,

		// ====== collections / itertools ======
		"collections.Counter":     lowerCollectionsCounter,
		"collections.defaultdict": lowerCollectionsDefaultdict,
		"collections.deque":       lowerCollectionsDeque,
		"collections.OrderedDict": lowerCollectionsOrderedDict,
		"itertools.chain":         lowerItertoolsChain,
		"itertools.repeat":        lowerItertoolsRepeat,

		// ====== datetime / time ======
		"datetime.datetime.now":       lowerDatetimeNow,
		"datetime.datetime.utcnow":    lowerDatetimeNow,
		"datetime.date.today":         lowerDatetimeNow,
		"datetime.datetime.timestamp": lowerTimeTime,
		"time.time":                   lowerTimeTime,
		"time.sleep":                  lowerTimeSleep,

		// ====== filesystem extras ======
		"pathlib.Path":               lowerPathlibPath,
		"tempfile.NamedTemporaryFile": lowerTempfileNamed,
		"tempfile.mkdtemp":           lowerTempfileMkdtemp,
		"tempfile.TemporaryDirectory": lowerTempfileMkdtemp,

		// ====== numpy ======
		"numpy.array": lowerNumpyArray,
		"numpy.zeros": lowerNumpyZeros,
		"numpy.ones":  lowerNumpyOnes,
		"numpy.dot":   lowerNumpyDot,
		"numpy.sum":   lowerNumpySum,
		"numpy.sqrt":  lowerNumpySqrt,

		// ====== concurrency ======
		"asyncio.run":      lowerAsyncioRun,
		"asyncio.sleep":    lowerAsyncioSleep,
		"threading.Thread": lowerThreadingThread,
		"queue.Queue":      lowerQueueQueue,

		// ====== misc ======
		"sys.exit":        lowerSysExit,
		"fnmatch.fnmatch": lowerFnmatch,
		"colorsys.rgb_to_hsv": lowerColorsysRGBToHSV,
		"colorsys.hsv_to_rgb": lowerColorsysHSVToRGB,
	}
}

func (c *Converter) convertModuleCall(e *hir.CallExpr) (rustast.Expr, error) {
	name := e.Func

	// numpy imports commonly alias to np.
	if strings.HasPrefix(name, "np.") {
		name = "numpy" + name[2:]
	}

	if c.Registry != nil {
		if err := c.Registry.CheckArity(name, len(e.Args)); err != nil {
			return nil, err
		}
	}

	if h, ok := moduleDispatch[name]; ok {
		return h(c, e)
	}

	if strings.HasPrefix(name, "math.") {
		if m, ok := mathFloatFuncs[name[len("math."):]]; ok {
			if err := c.checkArity(e, 1, 1); err != nil {
				return nil, err
			}
			arg, err := c.asFloat(e.Args[0])
			if err != nil {
				return nil, err
			}
			return &rustast.MethodCall{Recv: arg, Method: m}, nil
		}
	}

	// Typeshed-registered call.
	if c.Registry != nil {
		if target, ok := c.Registry.LookupFunction(name); ok {
			args, err := c.convertExprs(e.Args)
			if err != nil {
				return nil, err
			}
			if crate, ok := c.Registry.CrateFor(name); ok && !c.NASAMode {
				c.Crates.Add(crate)
			}
			return &rustast.Call{Func: target, Args: args}, nil
		}
	}

	c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName, "module call %s has no dispatch", e.Func)

	args, err := c.convertExprs(e.Args)
	if err != nil {
		return nil, err
	}

	return &rustast.Call{Func: strings.ReplaceAll(e.Func, ".", "::"), Args: args}, nil
}

// asFloat lowers an expression coerced to f64.
func (c *Converter) asFloat(e hir.Expr) (rustast.Expr, error) {
	arg, err := c.convertExpr(e)
	if err != nil {
		return nil, err
	}

	if isFloatType(c.exprType(e)) {
		return arg, nil
	}

	if n, ok := intLiteralValue(e); ok {
		return &rustast.Lit{Text: fmt.Sprintf("%d.0_f64", n)}, nil
	}

	return &rustast.Cast{E: arg, Ty: "f64"}, nil
}

func (c *Converter) twoFloats(e *hir.CallExpr) (rustast.Expr, rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, nil, err
	}

	a, err := c.asFloat(e.Args[0])
	if err != nil {
		return nil, nil, err
	}

	b, err := c.asFloat(e.Args[1])
	if err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

// oneArg lowers the single argument of a 1-ary module call.
func (c *Converter) oneArg(e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 1, 1); err != nil {
		return nil, err
	}

	return c.convertExpr(e.Args[0])
}

// ====== math ======

func lowerMathPow(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	a, b, err := c.twoFloats(e)
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: a, Method: "powf", Args: []rustast.Expr{b}}, nil
}

func lowerMathAtan2(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	a, b, err := c.twoFloats(e)
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: a, Method: "atan2", Args: []rustast.Expr{b}}, nil
}

func lowerMathHypot(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	a, b, err := c.twoFloats(e)
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: a, Method: "hypot", Args: []rustast.Expr{b}}, nil
}

func lowerMathFmod(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	a, b, err := c.twoFloats(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Binary{Op: "%", L: a, R: b}, nil
}

func lowerMathGCD(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	a, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	b, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ let (mut _a, mut _b) = ((%s).abs(), (%s).abs()); while _b != 0 { let _t = _b; _b = _a %% _b; _a = _t; } _a }",
		rustast.RenderExpr(a), rustast.RenderExpr(b))}, nil
}

func lowerMathFactorial(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf("(1..=%s).product::<%s>()",
		rustast.RenderExpr(arg), c.Mapper.IntType())}, nil
}

// ====== os / os.path ======

func lowerOsGetcwd(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	return &rustast.Raw{Text: `std::env::current_dir().expect("failed to get cwd").to_string_lossy().to_string()`}, nil
}

func lowerOsGetenv(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 1, 2); err != nil {
		return nil, err
	}

	key, err := c.strPatternArg(e.Args[0])
	if err != nil {
		return nil, err
	}

	if len(e.Args) == 2 {
		def, err := c.convertExpr(e.Args[1])
		if err != nil {
			return nil, err
		}
		return &rustast.Raw{Text: fmt.Sprintf("std::env::var(%s).unwrap_or(%s)",
			rustast.RenderExpr(key), rustast.RenderExpr(def))}, nil
	}

	return &rustast.Raw{Text: fmt.Sprintf("std::env::var(%s).unwrap_or_default()", rustast.RenderExpr(key))}, nil
}

func lowerOsListdir(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		`std::fs::read_dir(&%s).expect("failed to read dir").filter_map(|e| e.ok()).map(|e| e.file_name().to_string_lossy().to_string()).collect::<Vec<String>>()`,
		rustast.RenderExpr(arg))}, nil
}

func lowerOsMakedirs(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 1, 1); err != nil {
		return nil, err
	}

	arg, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		`std::fs::create_dir_all(&%s).expect("failed to create directory")`, rustast.RenderExpr(arg))}, nil
}

func lowerOsRemove(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		`std::fs::remove_file(&%s).expect("failed to remove file")`, rustast.RenderExpr(arg))}, nil
}

func lowerOsRmdir(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		`std::fs::remove_dir(&%s).expect("failed to remove directory")`, rustast.RenderExpr(arg))}, nil
}

func lowerOsRename(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	from, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	to, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		`std::fs::rename(&%s, &%s).expect("failed to rename")`,
		rustast.RenderExpr(from), rustast.RenderExpr(to))}, nil
}

// lowerOsWalk emits a walkdir iterator over entry paths. There is no std
// equivalent, so NASA mode refuses.
func lowerOsWalk(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if c.NASAMode {
		return nil, errors.New("os.walk requires the walkdir crate, which NASA mode excludes")
	}

	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("walkdir")
	c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
		"os.walk yields walkdir entries, not (dirpath, dirnames, filenames) triples")

	return &rustast.Raw{Text: fmt.Sprintf(
		"walkdir::WalkDir::new(&%s).into_iter().filter_map(|e| e.ok()).map(|e| e.path().to_string_lossy().to_string()).collect::<Vec<String>>()",
		rustast.RenderExpr(arg))}, nil
}

func lowerOsPathJoin(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if len(e.Args) < 1 {
		return nil, errors.New("os.path.join expects at least 1 argument")
	}

	first, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("{ let mut _p = std::path::PathBuf::from(&%s);", rustast.RenderExpr(first))
	for _, a := range e.Args[1:] {
		part, err := c.convertExpr(a)
		if err != nil {
			return nil, err
		}
		text += fmt.Sprintf(" _p.push(&%s);", rustast.RenderExpr(part))
	}
	text += " _p.to_string_lossy().to_string() }"

	return &rustast.Raw{Text: text}, nil
}

func (c *Converter) pathPredicate(e *hir.CallExpr, method string) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf("std::path::Path::new(&%s).%s()",
		rustast.RenderExpr(arg), method)}, nil
}

func lowerOsPathExists(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	return c.pathPredicate(e, "exists")
}

func lowerOsPathIsFile(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	return c.pathPredicate(e, "is_file")
}

func lowerOsPathIsDir(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	return c.pathPredicate(e, "is_dir")
}

func lowerOsPathBasename(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"std::path::Path::new(&%s).file_name().map(|f| f.to_string_lossy().to_string()).unwrap_or_default()",
		rustast.RenderExpr(arg))}, nil
}

func lowerOsPathDirname(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"std::path::Path::new(&%s).parent().map(|p| p.to_string_lossy().to_string()).unwrap_or_default()",
		rustast.RenderExpr(arg))}, nil
}

func lowerOsPathSplitext(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	text := rustast.RenderExpr(arg)

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ let _p = std::path::Path::new(&%s); match _p.extension() { Some(_ext) => (%s.trim_end_matches(&format!(\".{}\", _ext.to_string_lossy())).to_string(), format!(\".{}\", _ext.to_string_lossy())), None => (%s.clone(), String::new()) } }",
		text, text, text)}, nil
}

func lowerOsPathAbspath(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		`std::fs::canonicalize(&%s).expect("failed to resolve path").to_string_lossy().to_string()`,
		rustast.RenderExpr(arg))}, nil
}

func lowerOsPathGetsize(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		`std::fs::metadata(&%s).expect("failed to stat file").len() as %s`,
		rustast.RenderExpr(arg), c.Mapper.IntType())}, nil
}

// ====== re ======

// regexNew renders a compiled pattern expression and records the crate.
func (c *Converter) regexNew(pattern hir.Expr) (string, error) {
	c.Crates.Add("regex")

	p, err := c.strPatternArg(pattern)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`regex::Regex::new(%s).expect("invalid regex")`, rustast.RenderExpr(p)), nil
}

func lowerReCompile(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 1, 1); err != nil {
		return nil, err
	}

	re, err := c.regexNew(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: re}, nil
}

func lowerReMatch(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	re, err := c.regexNew(e.Args[0])
	if err != nil {
		return nil, err
	}

	s, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf("%s.is_match(&%s)", re, rustast.RenderExpr(s))}, nil
}

func lowerReSearch(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	re, err := c.regexNew(e.Args[0])
	if err != nil {
		return nil, err
	}

	s, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf("%s.find(&%s)", re, rustast.RenderExpr(s))}, nil
}

func lowerReFindall(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	re, err := c.regexNew(e.Args[0])
	if err != nil {
		return nil, err
	}

	s, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"%s.find_iter(&%s).map(|m| m.as_str().to_string()).collect::<Vec<String>>()",
		re, rustast.RenderExpr(s))}, nil
}

func lowerReSub(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 3, 3); err != nil {
		return nil, err
	}

	re, err := c.regexNew(e.Args[0])
	if err != nil {
		return nil, err
	}

	repl, err := c.strPatternArg(e.Args[1])
	if err != nil {
		return nil, err
	}

	s, err := c.convertExpr(e.Args[2])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf("%s.replace_all(&%s, %s).to_string()",
		re, rustast.RenderExpr(s), rustast.RenderExpr(repl))}, nil
}

func lowerReSplit(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	re, err := c.regexNew(e.Args[0])
	if err != nil {
		return nil, err
	}

	s, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"%s.split(&%s).map(|p| p.to_string()).collect::<Vec<String>>()", re, rustast.RenderExpr(s))}, nil
}

func lowerReEscape(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("regex")

	return &rustast.Raw{Text: fmt.Sprintf("regex::escape(&%s)", rustast.RenderExpr(arg))}, nil
}

// ====== json ======

func lowerJSONDumps(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("serde_json")

	return &rustast.Raw{Text: fmt.Sprintf(
		`serde_json::to_string(&%s).expect("failed to serialize JSON")`, rustast.RenderExpr(arg))}, nil
}

func lowerJSONLoads(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("serde_json")

	return &rustast.Raw{Text: fmt.Sprintf(
		`serde_json::from_str::<serde_json::Value>(&%s).expect("failed to parse JSON")`,
		rustast.RenderExpr(arg))}, nil
}

func lowerJSONDump(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	val, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	f, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	c.Crates.Add("serde_json")

	return &rustast.Raw{Text: fmt.Sprintf(
		`serde_json::to_writer(&mut %s, &%s).expect("failed to write JSON")`,
		rustast.RenderExpr(f), rustast.RenderExpr(val))}, nil
}

func lowerJSONLoad(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("serde_json")

	return &rustast.Raw{Text: fmt.Sprintf(
		`serde_json::from_reader::<_, serde_json::Value>(&mut %s).expect("failed to parse JSON")`,
		rustast.RenderExpr(arg))}, nil
}

// ====== hashlib / base64 ======

func (c *Converter) lowerDigestNew(e *hir.CallExpr, typeName, crate string) (rustast.Expr, error) {
	if err := c.checkArity(e, 0, 1); err != nil {
		return nil, err
	}

	c.Crates.Add(crate)

	if len(e.Args) == 0 {
		return &rustast.Raw{Text: typeName + "::new()"}, nil
	}

	data, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ let mut _h = %s::new(); _h.update(&%s); _h }", typeName, rustast.RenderExpr(data))}, nil
}

func lowerHashlibSha256(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	return c.lowerDigestNew(e, "sha2::Sha256", "sha2")
}

func lowerHashlibMd5(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	return c.lowerDigestNew(e, "md5::Md5", "md-5")
}

func lowerBase64Encode(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("base64")

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ use base64::Engine as _; base64::engine::general_purpose::STANDARD.encode(&%s) }",
		rustast.RenderExpr(arg))}, nil
}

func lowerBase64Decode(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("base64")

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ use base64::Engine as _; base64::engine::general_purpose::STANDARD.decode(&%s).expect(\"invalid base64\") }",
		rustast.RenderExpr(arg))}, nil
}

// ====== csv ======

func lowerCSVReader(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("csv")

	return &rustast.Raw{Text: fmt.Sprintf(
		"csv::ReaderBuilder::new().has_headers(false).from_reader(%s)", rustast.RenderExpr(arg))}, nil
}

func lowerCSVDictReader(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("csv")

	return &rustast.Raw{Text: fmt.Sprintf("csv::Reader::from_reader(%s)", rustast.RenderExpr(arg))}, nil
}

func lowerCSVWriter(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("csv")

	return &rustast.Raw{Text: fmt.Sprintf("csv::Writer::from_writer(%s)", rustast.RenderExpr(arg))}, nil
}

// ====== random ======

func lowerRandomRandom(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	c.Crates.Add("rand")

	return &rustast.Raw{Text: "rand::random::<f64>()"}, nil
}

func lowerRandomRandint(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	a, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	b, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	c.Crates.Add("rand")

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ use rand::Rng as _; rand::thread_rng().gen_range(%s..=%s) }",
		rustast.RenderExpr(a), rustast.RenderExpr(b))}, nil
}

func lowerRandomUniform(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	a, b, err := c.twoFloats(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("rand")

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ use rand::Rng as _; rand::thread_rng().gen_range(%s..%s) }",
		rustast.RenderExpr(a), rustast.RenderExpr(b))}, nil
}

func lowerRandomChoice(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("rand")

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ use rand::seq::SliceRandom as _; %s.choose(&mut rand::thread_rng()).expect(\"choice from empty sequence\").clone() }",
		rustast.RenderExpr(arg))}, nil
}

func lowerRandomShuffle(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("rand")

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ use rand::seq::SliceRandom as _; %s.shuffle(&mut rand::thread_rng()); }",
		rustast.RenderExpr(arg))}, nil
}

// ====== collections / itertools ======

func lowerCollectionsCounter(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if len(e.Args) == 0 {
		return &rustast.Call{Func: "HashMap::new"}, nil
	}

	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ let mut _counts = HashMap::new(); for _v in %s.iter() { *_counts.entry(_v.clone()).or_insert(0) += 1; } _counts }",
		rustast.RenderExpr(arg))}, nil
}

func lowerCollectionsDefaultdict(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
		"defaultdict lowered to HashMap; missing-key defaults need explicit entry calls")

	return &rustast.Call{Func: "HashMap::new"}, nil
}

func lowerCollectionsDeque(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 0, 1); err != nil {
		return nil, err
	}

	if len(e.Args) == 0 {
		return &rustast.Raw{Text: "std::collections::VecDeque::new()"}, nil
	}

	arg, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"std::collections::VecDeque::from(%s.clone())", rustast.RenderExpr(arg))}, nil
}

func lowerCollectionsOrderedDict(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
		"OrderedDict lowered to HashMap; iteration order is not preserved")

	return &rustast.Call{Func: "HashMap::new"}, nil
}

func lowerItertoolsChain(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if len(e.Args) < 2 {
		return nil, errors.New("itertools.chain expects at least 2 arguments")
	}

	out, err := c.iterSource(e.Args[0])
	if err != nil {
		return nil, err
	}

	for _, a := range e.Args[1:] {
		next, err := c.iterSource(a)
		if err != nil {
			return nil, err
		}
		out = &rustast.MethodCall{Recv: out, Method: "chain", Args: []rustast.Expr{next}}
	}

	return out, nil
}

func lowerItertoolsRepeat(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 1, 2); err != nil {
		return nil, err
	}

	val, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	out := rustast.Expr(&rustast.Call{Func: "std::iter::repeat", Args: []rustast.Expr{val}})

	if len(e.Args) == 2 {
		n, err := c.convertExpr(e.Args[1])
		if err != nil {
			return nil, err
		}
		out = &rustast.MethodCall{Recv: out, Method: "take", Args: []rustast.Expr{&rustast.Cast{E: n, Ty: "usize"}}}
	}

	return out, nil
}

// ====== datetime / time ======

func lowerDatetimeNow(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if c.NASAMode {
		return &rustast.Raw{Text: "std::time::SystemTime::now()"}, nil
	}

	c.Crates.Add("chrono")

	return &rustast.Raw{Text: "chrono::Utc::now()"}, nil
}

func lowerTimeTime(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	return &rustast.Raw{Text: `std::time::SystemTime::now().duration_since(std::time::UNIX_EPOCH).expect("clock before epoch").as_secs_f64()`}, nil
}

func lowerTimeSleep(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 1, 1); err != nil {
		return nil, err
	}

	secs, err := c.asFloat(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"std::thread::sleep(std::time::Duration::from_secs_f64(%s))", rustast.RenderExpr(secs))}, nil
}

// ====== filesystem extras ======

func lowerPathlibPath(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf("std::path::PathBuf::from(&%s)", rustast.RenderExpr(arg))}, nil
}

func lowerTempfileNamed(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if c.NASAMode {
		return nil, errors.New("tempfile requires the tempfile crate, which NASA mode excludes")
	}

	c.Crates.Add("tempfile")

	return &rustast.Raw{Text: `tempfile::NamedTempFile::new().expect("failed to create temp file")`}, nil
}

func lowerTempfileMkdtemp(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if c.NASAMode {
		return nil, errors.New("tempfile requires the tempfile crate, which NASA mode excludes")
	}

	c.Crates.Add("tempfile")

	return &rustast.Raw{Text: `tempfile::tempdir().expect("failed to create temp dir")`}, nil
}

// ====== numpy ======

func lowerNumpyArray(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	if c.NASAMode {
		return &rustast.MethodCall{Recv: arg, Method: "clone"}, nil
	}

	c.Crates.Add("trueno")

	return &rustast.Raw{Text: fmt.Sprintf("trueno::Vector::from(%s.clone())", rustast.RenderExpr(arg))}, nil
}

func (c *Converter) numpyFill(e *hir.CallExpr, fill string) (rustast.Expr, error) {
	n, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	vec := fmt.Sprintf("vec![%s; %s as usize]", fill, rustast.RenderExpr(n))

	if c.NASAMode {
		return &rustast.Raw{Text: vec}, nil
	}

	c.Crates.Add("trueno")

	return &rustast.Raw{Text: fmt.Sprintf("trueno::Vector::from(%s)", vec)}, nil
}

func lowerNumpyZeros(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	return c.numpyFill(e, "0.0")
}

func lowerNumpyOnes(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	return c.numpyFill(e, "1.0")
}

func lowerNumpyDot(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	a, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	b, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	if c.NASAMode {
		return &rustast.Raw{Text: fmt.Sprintf(
			"%s.iter().zip(%s.iter()).map(|(_x, _y)| _x * _y).sum::<f64>()",
			rustast.RenderExpr(a), rustast.RenderExpr(b))}, nil
	}

	c.Crates.Add("trueno")

	return &rustast.MethodCall{Recv: a, Method: "dot", Args: []rustast.Expr{&rustast.Ref{E: b}}}, nil
}

func lowerNumpySum(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	if c.NASAMode {
		return &rustast.Raw{Text: rustast.RenderExpr(arg) + ".iter().sum::<f64>()"}, nil
	}

	return &rustast.MethodCall{Recv: arg, Method: "sum"}, nil
}

func lowerNumpySqrt(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 1, 1); err != nil {
		return nil, err
	}

	arg, err := c.asFloat(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: arg, Method: "sqrt"}, nil
}

// ====== concurrency ======

func lowerAsyncioRun(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	arg, err := c.oneArg(e)
	if err != nil {
		return nil, err
	}

	c.Crates.Add("tokio")

	return &rustast.Raw{Text: fmt.Sprintf(
		`tokio::runtime::Runtime::new().expect("failed to build runtime").block_on(%s)`,
		rustast.RenderExpr(arg))}, nil
}

func lowerAsyncioSleep(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 1, 1); err != nil {
		return nil, err
	}

	secs, err := c.asFloat(e.Args[0])
	if err != nil {
		return nil, err
	}

	c.Crates.Add("tokio")

	return &rustast.Raw{Text: fmt.Sprintf(
		"tokio::time::sleep(std::time::Duration::from_secs_f64(%s))", rustast.RenderExpr(secs))}, nil
}

func lowerThreadingThread(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	for _, kw := range e.Kwargs {
		if kw.Name == "target" {
			target, err := c.convertExpr(kw.Value)
			if err != nil {
				return nil, err
			}
			return &rustast.Raw{Text: fmt.Sprintf("std::thread::spawn(%s)", rustast.RenderExpr(target))}, nil
		}
	}

	return nil, errors.New("threading.Thread requires a target keyword argument")
}

func lowerQueueQueue(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
		"queue.Queue lowered to VecDeque; cross-thread use needs a channel")

	return &rustast.Raw{Text: "std::collections::VecDeque::new()"}, nil
}

// ====== misc ======

func lowerSysExit(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 0, 1); err != nil {
		return nil, err
	}

	code := rustast.Expr(&rustast.Lit{Text: "0"})
	if len(e.Args) == 1 {
		var err error
		code, err = c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
	}

	return &rustast.Call{Func: "std::process::exit", Args: []rustast.Expr{code}}, nil
}

func lowerFnmatch(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 2, 2); err != nil {
		return nil, err
	}

	name, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	pat, err := c.strPatternArg(e.Args[1])
	if err != nil {
		return nil, err
	}

	c.Crates.Add("regex")

	return &rustast.Raw{Text: fmt.Sprintf(
		`{ let _pat = format!("^{}$", regex::escape(%s).replace("\\*", ".*").replace("\\?", ".")); regex::Regex::new(&_pat).expect("invalid pattern").is_match(&%s) }`,
		rustast.RenderExpr(pat), rustast.RenderExpr(name))}, nil
}

func lowerColorsysRGBToHSV(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 3, 3); err != nil {
		return nil, err
	}

	r, err := c.asFloat(e.Args[0])
	if err != nil {
		return nil, err
	}

	g, err := c.asFloat(e.Args[1])
	if err != nil {
		return nil, err
	}

	b, err := c.asFloat(e.Args[2])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ let (_r, _g, _b) = (%s, %s, %s); let _max = _r.max(_g).max(_b); let _min = _r.min(_g).min(_b); let _v = _max; if _max == _min { (0.0, 0.0, _v) } else { let _d = _max - _min; let _s = _d / _max; let _h = if _max == _r { ((_g - _b) / _d).rem_euclid(6.0) } else if _max == _g { (_b - _r) / _d + 2.0 } else { (_r - _g) / _d + 4.0 } / 6.0; (_h.rem_euclid(1.0), _s, _v) } }",
		rustast.RenderExpr(r), rustast.RenderExpr(g), rustast.RenderExpr(b))}, nil
}

func lowerColorsysHSVToRGB(c *Converter, e *hir.CallExpr) (rustast.Expr, error) {
	if err := c.checkArity(e, 3, 3); err != nil {
		return nil, err
	}

	h, err := c.asFloat(e.Args[0])
	if err != nil {
		return nil, err
	}

	s, err := c.asFloat(e.Args[1])
	if err != nil {
		return nil, err
	}

	v, err := c.asFloat(e.Args[2])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ let (_h, _s, _v) = (%s, %s, %s); let _i = (_h * 6.0).floor(); let _f = _h * 6.0 - _i; let _p = _v * (1.0 - _s); let _q = _v * (1.0 - _f * _s); let _t = _v * (1.0 - (1.0 - _f) * _s); match (_i as i64).rem_euclid(6) { 0 => (_v, _t, _p), 1 => (_q, _v, _p), 2 => (_p, _v, _t), 3 => (_p, _q, _v), 4 => (_t, _p, _v), _ => (_v, _p, _q) } }",
		rustast.RenderExpr(h), rustast.RenderExpr(s), rustast.RenderExpr(v))}, nil
}
