package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("user lock timeout")

// UserLocker serializa el ciclo leer -> calcular -> escribir de un mismo usuario.
// Lock devuelve la funcion de liberacion; llamarla mas de una vez no tiene efecto.
type UserLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// KeyedMutexLocker es un mutex por clave dentro del proceso. Las entradas se eliminan
// cuando el ultimo interesado libera.
type KeyedMutexLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedMutex
}

type keyedMutex struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutexLocker() *KeyedMutexLocker {
	return &KeyedMutexLocker{locks: make(map[string]*keyedMutex)}
}

func (l *KeyedMutexLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	km, ok := l.locks[key]
	if !ok {
		km = &keyedMutex{ch: make(chan struct{}, 1)}
		l.locks[key] = km
	}
	km.refs++
	l.mu.Unlock()

	select {
	case km.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, km, false)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, km, true) })
	}, nil
}

func (l *KeyedMutexLocker) release(key string, km *keyedMutex, held bool) {
	if held {
		<-km.ch
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	km.refs--
	if km.refs == 0 {
		delete(l.locks, key)
	}
}

// inUse devuelve cuantas claves tienen interesados; se usa en tests.
func (l *KeyedMutexLocker) inUse() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

const redisLockAcquireScript = `
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
  return 1
end
return 0
`

const redisLockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisUserLocker comparte el lock entre replicas. El valor guardado es un token propio de cada
// adquisicion, asi una replica nunca borra el lock de otra.
type RedisUserLocker struct {
	client  redisEvaler
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
	prefix  string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisUserLocker(client *redis.Client, ttl, wait time.Duration) *RedisUserLocker {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 3 * time.Second
	}
	return &RedisUserLocker{
		client:  client,
		ttl:     ttl,
		wait:    wait,
		backoff: 25 * time.Millisecond,
		prefix:  "lock:user:",
	}
}

func (l *RedisUserLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + strings.ToLower(strings.TrimSpace(key))
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	for {
		ok, err := l.client.Eval(ctx, redisLockAcquireScript, []string{redisKey}, token, l.ttl.Milliseconds()).Int()
		if err != nil && ctx.Err() == nil {
			return nil, err
		}
		if err == nil && ok == 1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(l.backoff):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer releaseCancel()
			// Si falla, el TTL termina liberando la clave.
			_ = l.client.Eval(releaseCtx, redisLockReleaseScript, []string{redisKey}, token).Err()
		})
	}, nil
}
